package dataprocessing

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// aliasIndex is columnAliases keyed by lookupKey, plus every canonical name
// mapping to itself.
var aliasIndex = buildAliasIndex()

func buildAliasIndex() map[string]string {
	index := make(map[string]string, len(columnAliases)+len(CanonicalColumns))
	for alias, canonical := range columnAliases {
		index[lookupKey(alias)] = canonical
	}
	for _, canonical := range CanonicalColumns {
		index[lookupKey(canonical)] = canonical
	}
	return index
}

// NormalizeColumnName trims, collapses whitespace runs, upper-cases and then
// resolves a header through the alias table. Unknown headers are returned in
// their structurally normalized form.
func NormalizeColumnName(name string) string {
	structural := cases.Upper(language.Und).String(strings.Join(strings.Fields(name), " "))
	if canonical, ok := aliasIndex[lookupKey(structural)]; ok {
		return canonical
	}
	return structural
}

// lookupKey folds accents and treats underscores as spaces.
func lookupKey(name string) string {
	folded, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		name,
	)
	if err != nil {
		folded = name
	}
	folded = strings.ReplaceAll(folded, "_", " ")
	return strings.ToUpper(strings.Join(strings.Fields(folded), " "))
}

// Normalize renames the columns of raw to canonical names. Values are not
// touched. When several columns resolve to the same name the first keeps it
// and later ones receive a numeric suffix (_2, _3, ...). Safe to call on an
// already normalized frame.
func Normalize(raw dataframe.DataFrame) dataframe.DataFrame {
	if raw.Err != nil || raw.Ncol() == 0 {
		return raw
	}

	names := raw.Names()
	resolved := make([]string, len(names))
	for i, name := range names {
		resolved[i] = NormalizeColumnName(name)
	}
	final := dedupeNames(resolved)

	changed := false
	for i := range names {
		if names[i] != final[i] {
			changed = true
			break
		}
	}
	if !changed {
		return raw
	}

	cols := make([]series.Series, len(names))
	for i, name := range names {
		s := raw.Col(name).Copy()
		s.Name = final[i]
		cols[i] = s
	}
	return dataframe.New(cols...)
}

func dedupeNames(resolved []string) []string {
	taken := make(map[string]bool, len(resolved))
	out := make([]string, len(resolved))
	var collisions []int

	for i, name := range resolved {
		if taken[name] {
			collisions = append(collisions, i)
			continue
		}
		taken[name] = true
		out[i] = name
	}

	for _, i := range collisions {
		for k := 2; ; k++ {
			candidate := fmt.Sprintf("%s_%d", resolved[i], k)
			if !taken[candidate] {
				taken[candidate] = true
				out[i] = candidate
				break
			}
		}
	}
	return out
}
