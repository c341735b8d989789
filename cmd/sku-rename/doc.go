/*
Sku-rename is the command line companion of the SKU renamer service.

It runs the same intake checks, descriptor registry and naming rules as the
HTTP service, but works on files on disk and writes the archive locally.

Usage:

	sku-rename pack --sku 63755 front=IMG_0001.ARW rear=IMG_0002.jpg
	sku-rename pack --manifest shots.yaml --out out [--publish] [--dry-run]
	sku-rename preview IMG_0001.ARW -o front.jpg
	sku-rename descriptors

A .env file in the working directory is loaded before any command runs, so
S3_* publishing settings can live there. --verbose enables debug logging.
*/
package main
