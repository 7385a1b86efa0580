package etl

import (
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FoldAccents удаляет комбинируемые диакритические знаки из строки:
// NFD-декомпозиция, отбрасывание Mn-рун, NFC-рекомпозиция.
// Используется для заполнения admin*nameascii на диалектах без
// unaccent(). Идемпотентна; ASCII-строки возвращаются как есть.
func FoldAccents(s string) string {
	folder := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
	out, _, err := transform.String(folder, s)
	if err != nil {
		return s
	}
	return out
}
