package feature

import "fmt"

// Version identifies a language edition. Editions form a chain: every
// edition includes all features of the editions before it.
type Version uint8

const (
	ES3 Version = iota
	ES5
	ES2015
	ES2016
	ES2017
	ES2018
	ES2019
	ES2020
	ES2021
	ESNext
)

// canonical tag per version, the spelling used in catalog tables and
// registration calls.
var versionTags = [...]string{
	ES3:    "es3",
	ES5:    "es5",
	ES2015: "es6",
	ES2016: "es7",
	ES2017: "es8",
	ES2018: "es9",
	ES2019: "es_2019",
	ES2020: "es_2020",
	ES2021: "es_2021",
	ESNext: "es_next",
}

// tagAliases maps accepted alternate spellings onto versions.
var tagAliases = map[string]Version{
	"es3":     ES3,
	"es5":     ES5,
	"es6":     ES2015,
	"es2015":  ES2015,
	"es7":     ES2016,
	"es2016":  ES2016,
	"es8":     ES2017,
	"es2017":  ES2017,
	"es9":     ES2018,
	"es2018":  ES2018,
	"es_2019": ES2019,
	"es2019":  ES2019,
	"es_2020": ES2020,
	"es2020":  ES2020,
	"es_2021": ES2021,
	"es2021":  ES2021,
	"es_next": ESNext,
	"esnext":  ESNext,
}

func (v Version) String() string {
	if int(v) < len(versionTags) {
		return versionTags[v]
	}
	return fmt.Sprintf("Version(%d)", uint8(v))
}

// Newer reports whether v is strictly newer than other.
func (v Version) Newer(other Version) bool {
	return v > other
}

// ParseVersion maps a version tag onto a Version. Parsing is total over the
// catalog vocabulary; anything else is an error.
func ParseVersion(tag string) (Version, error) {
	if v, ok := tagAliases[tag]; ok {
		return v, nil
	}
	return 0, fmt.Errorf("unknown language version tag %q", tag)
}

// Latest returns the newest known version.
func Latest() Version {
	return ESNext
}
