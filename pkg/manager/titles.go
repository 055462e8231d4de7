package manager

import (
	"strings"

	"github.com/kasuboski/shokoz/pkg/info"
	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/language"
)

// romajiLanguage is the AniDB code for romanized Japanese
const romajiLanguage = "x-jat"

// SelectTitles picks the display title and the alternate (romanized) title of a
// series. The display title is the main or official title in the preferred
// language, then the series' main title, then the romanized title.
func SelectTitles(series *info.SeriesInfo, preferred language.Tag) (title, alternate string) {
	if series == nil {
		return "", ""
	}

	mainTitle := series.Name
	if mainTitle == "" {
		mainTitle = titleOfType(series.Titles, info.TitleTypeMain)
	}
	alternate = romanized(series, mainTitle)

	if preferred != language.Und {
		if t, ok := preferredTitle(series.Titles, preferred); ok {
			return t, alternate
		}
	}
	if mainTitle != "" {
		return mainTitle, alternate
	}
	return alternate, alternate
}

func preferredTitle(titles []info.Title, preferred language.Tag) (string, bool) {
	tags := make([]language.Tag, 0, len(titles))
	names := make([]string, 0, len(titles))
	for _, t := range titles {
		if t.Type != info.TitleTypeMain && t.Type != info.TitleTypeOfficial {
			continue
		}
		if strings.EqualFold(t.Language, romajiLanguage) || t.Name == "" {
			continue
		}
		tag, err := language.Parse(t.Language)
		if err != nil {
			continue
		}
		tags = append(tags, tag)
		names = append(names, t.Name)
	}
	if len(tags) == 0 {
		return "", false
	}

	_, idx, conf := language.NewMatcher(tags).Match(preferred)
	if conf < language.High {
		return "", false
	}
	return names[idx], true
}

func romanized(series *info.SeriesInfo, mainTitle string) string {
	var fallback string
	for _, t := range series.Titles {
		if !strings.EqualFold(t.Language, romajiLanguage) || t.Name == "" {
			continue
		}
		if t.Type == info.TitleTypeMain {
			return t.Name
		}
		if fallback == "" {
			fallback = t.Name
		}
	}
	if fallback != "" {
		return fallback
	}

	source := mainTitle
	if source == "" && len(series.Titles) > 0 {
		source = series.Titles[0].Name
	}
	return strings.TrimSpace(unidecode.Unidecode(source))
}

func titleOfType(titles []info.Title, titleType string) string {
	for _, t := range titles {
		if t.Type == titleType && t.Name != "" {
			return t.Name
		}
	}
	return ""
}

// parseLanguage reads a BCP 47 tag, returning Und when it is empty or malformed
func parseLanguage(s string) language.Tag {
	if s == "" {
		return language.Und
	}
	tag, err := language.Parse(s)
	if err != nil {
		return language.Und
	}
	return tag
}
