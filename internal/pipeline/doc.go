// Package pipeline streams reads from FASTA/FASTQ files through an
// Extractor on a pool of workers and hands each finished read to a visit
// callback, one at a time.
//
// The only contract to implement is Extractor (Extract).
// This keeps the pipeline swappable and testable.
package pipeline
