package grammar

import "strings"

// SubstituteBindings splices escaped binding literals into raw SQL at each
// placeholder. Placeholders inside single-quoted literals are left alone,
// as are the escape pairs \', '' and ??, which pass through verbatim.
// Surplus placeholders stay in the output; surplus bindings are ignored.
func (g *Grammar) SubstituteBindings(rawSQL string, bindings []any) (string, error) {
	escaped := make([]string, 0, len(bindings))
	for _, b := range bindings {
		literal, err := g.dialect.Escape(b)
		if err != nil {
			return "", err
		}
		escaped = append(escaped, literal)
	}

	var out strings.Builder
	out.Grow(len(rawSQL))
	inLiteral := false
	for i := 0; i < len(rawSQL); i++ {
		if i+1 < len(rawSQL) {
			pair := rawSQL[i : i+2]
			if pair == `\'` || pair == "''" || pair == "??" {
				out.WriteString(pair)
				i++
				continue
			}
		}
		c := rawSQL[i]
		switch {
		case c == '\'':
			inLiteral = !inLiteral
			out.WriteByte(c)
		case c == '?' && !inLiteral && len(escaped) > 0:
			out.WriteString(escaped[0])
			escaped = escaped[1:]
		default:
			out.WriteByte(c)
		}
	}
	return out.String(), nil
}
