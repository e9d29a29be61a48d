package templater

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"copymanga/internal/domain"
)

// a field is {name} or {name:options}, <.> inside options marks the value
var templatePattern = regexp.MustCompile(`{(\w+)(?::(.*?))?}`)

const valueMarker = "<.>"

// Templater names a chapter file. Position is the 1-based place of the
// chapter in the oldest first chapter list.
type Templater struct {
	fields map[string]func(options string) string
}

func New(manga domain.MangaDetail, chapter domain.Chapter, position int) *Templater {
	return &Templater{
		fields: map[string]func(string) string{
			"manga": wrap(manga.Title),
			"title": wrap(chapter.Name),
			"num":   padded(position),
		},
	}
}

// wrap renders options around value, an empty value drops the whole field.
func wrap(value string) func(string) string {
	return func(options string) string {
		if value == "" {
			return ""
		}
		if options == "" {
			return value
		}
		return strings.ReplaceAll(options, valueMarker, value)
	}
}

// padded renders n, {num:3} pads it with zeros to three digits.
func padded(n int) func(string) string {
	return func(options string) string {
		width, err := strconv.Atoi(strings.TrimSpace(options))
		if err != nil || width < 1 {
			return strconv.Itoa(n)
		}
		return fmt.Sprintf("%0*d", width, n)
	}
}

// ExecTemplate replaces known fields and leaves unknown ones as written.
func (t *Templater) ExecTemplate(template string) string {
	return templatePattern.ReplaceAllStringFunc(template, func(field string) string {
		m := templatePattern.FindStringSubmatch(field)

		render, ok := t.fields[m[1]]
		if !ok {
			return field
		}
		return render(m[2])
	})
}
