// cmd/matchchains-index/main.go
package main

import (
	"matchchains/internal/app"
	"matchchains/internal/appshell"
)

func main() { appshell.Main(app.Run) }
