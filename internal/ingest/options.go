package ingest

import "zennovel/internal/config"

// Options carries the segmentation policy thresholds. The zero value is not
// usable; construct through DefaultOptions or OptionsFromConfig.
type Options struct {
	// FilenameBlacklist marks document items as noise by filename substring.
	FilenameBlacklist []string
	// RescueMarkers override the blacklist for filenames that also look like
	// real chapters.
	RescueMarkers []string
	// TOCScanLines bounds the leading text lines inspected by the embedded
	// table-of-contents filter.
	TOCScanLines int
	// TOCEntryThreshold is the chapter-list-line count above which an item is
	// treated as an embedded table of contents. Raising this from 10 to 50
	// fixed long chapters being misclassified; lower it only with evidence.
	TOCEntryThreshold int
	// HeadingScanParagraphs bounds the leading paragraphs scanned for a
	// chapter heading when no heading element exists.
	HeadingScanParagraphs int
	// MinBodyChars is the minimum plain-text length of a cleaned body.
	MinBodyChars int
	// GenreMaxChars caps the joined subject list in extracted metadata.
	GenreMaxChars int
	// TextChunkSize is the paragraphs-per-chapter grouping for .txt uploads.
	TextChunkSize int
}

// DefaultOptions returns the repository-default segmentation policy.
func DefaultOptions() Options {
	return OptionsFromConfig(config.Default().Ingest)
}

// OptionsFromConfig builds Options from the ingest configuration section.
func OptionsFromConfig(cfg config.Ingest) Options {
	return Options{
		FilenameBlacklist:     append([]string(nil), cfg.FilenameBlacklist...),
		RescueMarkers:         append([]string(nil), cfg.RescueMarkers...),
		TOCScanLines:          cfg.TOCScanLines,
		TOCEntryThreshold:     cfg.TOCEntryThreshold,
		HeadingScanParagraphs: cfg.HeadingScanParagraphs,
		MinBodyChars:          cfg.MinBodyChars,
		GenreMaxChars:         cfg.GenreMaxChars,
		TextChunkSize:         cfg.TextChunkSize,
	}
}
