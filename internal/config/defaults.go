package config

const (
	defaultDataDir  = "~/.local/share/zennovel"
	defaultMediaDir = "~/.local/share/zennovel/media"
	defaultLogDir   = "~/.local/share/zennovel/logs"
	defaultAPIBind  = "127.0.0.1:8375"

	defaultLogFormat = "console"
	defaultLogLevel  = "info"

	defaultTOCScanLines          = 100
	defaultTOCEntryThreshold     = 50
	defaultHeadingScanParagraphs = 10
	defaultMinBodyChars          = 20
	defaultGenreMaxChars         = 100
	defaultTextChunkSize         = 30
)

// defaultFilenameBlacklist marks document items that are front matter or
// navigation rather than chapters. The Indonesian entries cover the
// translated uploads the platform commonly receives.
var defaultFilenameBlacklist = []string{
	"table of contents",
	"contents",
	"index",
	"copyright",
	"intro",
	"front page",
	"title page",
	"acknowledgments",
	"nav",
	"menu",
	"cover",
	"daftar isi",
	"indeks",
	"pendahuluan",
	"halaman judul",
}

// defaultRescueMarkers rescue real chapters whose filenames happen to contain
// a blacklisted substring.
var defaultRescueMarkers = []string{"chapter", "bab"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:  defaultDataDir,
			MediaDir: defaultMediaDir,
			LogDir:   defaultLogDir,
			APIBind:  defaultAPIBind,
		},
		Ingest: Ingest{
			FilenameBlacklist:     append([]string(nil), defaultFilenameBlacklist...),
			RescueMarkers:         append([]string(nil), defaultRescueMarkers...),
			TOCScanLines:          defaultTOCScanLines,
			TOCEntryThreshold:     defaultTOCEntryThreshold,
			HeadingScanParagraphs: defaultHeadingScanParagraphs,
			MinBodyChars:          defaultMinBodyChars,
			GenreMaxChars:         defaultGenreMaxChars,
			TextChunkSize:         defaultTextChunkSize,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
