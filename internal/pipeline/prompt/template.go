package prompt

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var (
	// ErrUnresolvedPlaceholder is returned when a template placeholder has no value.
	ErrUnresolvedPlaceholder = errors.New("unresolved placeholder")
	// ErrUnusedValue is returned when a value does not match any placeholder.
	ErrUnusedValue = errors.New("value has no placeholder")
)

var placeholderRe = regexp.MustCompile(`\{\{\s*([a-z][a-z0-9_]*)\s*\}\}`)

// Template is a fixed prompt text with {{name}} placeholders.
type Template struct {
	Name string
	Text string
}

// Placeholders returns the distinct placeholder names in the template, sorted.
func (t Template) Placeholders() []string {
	seen := map[string]struct{}{}
	for _, m := range placeholderRe.FindAllStringSubmatch(t.Text, -1) {
		seen[m[1]] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Render substitutes every placeholder. Substituted values are not re-scanned,
// so text that itself looks like a placeholder is left as-is.
func (t Template) Render(values map[string]string) (string, error) {
	names := t.Placeholders()

	var missing []string
	for _, name := range names {
		if _, ok := values[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("%s template: %w: %s", t.Name, ErrUnresolvedPlaceholder, strings.Join(missing, ", "))
	}

	used := make(map[string]struct{}, len(names))
	for _, name := range names {
		used[name] = struct{}{}
	}
	var unused []string
	for name := range values {
		if _, ok := used[name]; !ok {
			unused = append(unused, name)
		}
	}
	if len(unused) > 0 {
		sort.Strings(unused)
		return "", fmt.Errorf("%s template: %w: %s", t.Name, ErrUnusedValue, strings.Join(unused, ", "))
	}

	return placeholderRe.ReplaceAllStringFunc(t.Text, func(m string) string {
		name := placeholderRe.FindStringSubmatch(m)[1]
		return values[name]
	}), nil
}

// MustRender is Render for the fixed templates of this package; a mismatch is a
// programming error.
func (t Template) MustRender(values map[string]string) string {
	out, err := t.Render(values)
	if err != nil {
		panic(err)
	}
	return out
}
