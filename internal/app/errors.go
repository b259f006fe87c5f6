package app

import "errors"

var (
	// ErrBookNotFound indicates no catalog entry matches the ISBN.
	ErrBookNotFound = errors.New("book not found")
	// ErrNotDigital indicates the book has no downloadable edition.
	ErrNotDigital = errors.New("book has no digital edition")
	// ErrQuotaExhausted indicates the digital edition is out of downloads.
	ErrQuotaExhausted = errors.New("download quota exhausted")
	// ErrDownloadsUnavailable indicates no object storage is configured.
	ErrDownloadsUnavailable = errors.New("downloads unavailable")
)
