package settings

import (
	"fmt"
	"math"
	"strings"
)

// El color de acento se usa como fondo de botones y badges, con el texto del
// foreground encima. WCAG 2.1 pide 3:1 mínimo para componentes de interfaz
// (no-texto y texto grande), que es el umbral que aplicamos acá.
const minContrastRatio = 3.0

// Foregrounds por tema: el texto sobre el acento es blanco en light/system y
// casi negro en dark.
const (
	lightForeground = "#ffffff"
	darkForeground  = "#111827"
)

// parseHexColor parsea "#rrggbb" a componentes 0-255.
func parseHexColor(s string) (r, g, b int, err error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if len(s) != 7 || s[0] != '#' {
		return 0, 0, 0, fmt.Errorf("color %q: formato esperado #rrggbb", s)
	}
	if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &r, &g, &b); err != nil {
		return 0, 0, 0, fmt.Errorf("color %q: %w", s, err)
	}
	return r, g, b, nil
}

// relativeLuminance implementa la fórmula de WCAG 2.1.
func relativeLuminance(r, g, b int) float64 {
	lin := func(c int) float64 {
		v := float64(c) / 255.0
		if v <= 0.03928 {
			return v / 12.92
		}
		return math.Pow((v+0.055)/1.055, 2.4)
	}
	return 0.2126*lin(r) + 0.7152*lin(g) + 0.0722*lin(b)
}

// ContrastRatio calcula el ratio de contraste WCAG entre dos colores hex.
func ContrastRatio(hexA, hexB string) (float64, error) {
	ra, ga, ba, err := parseHexColor(hexA)
	if err != nil {
		return 0, err
	}
	rb, gb, bb, err := parseHexColor(hexB)
	if err != nil {
		return 0, err
	}
	la := relativeLuminance(ra, ga, ba)
	lb := relativeLuminance(rb, gb, bb)
	if lb > la {
		la, lb = lb, la
	}
	return (la + 0.05) / (lb + 0.05), nil
}

// foregroundFor retorna el color de texto que se dibuja sobre el acento en
// cada tema. "system" se valida contra el caso light, que es el default.
func foregroundFor(theme string) string {
	if theme == "dark" {
		return darkForeground
	}
	return lightForeground
}

// validateAccent rechaza acentos que no alcanzan el contraste mínimo contra
// el foreground del tema. Corre antes de cualquier escritura.
func validateAccent(accent, theme string) error {
	ratio, err := ContrastRatio(accent, foregroundFor(theme))
	if err != nil {
		return validationErr("accent_color", err.Error())
	}
	if ratio < minContrastRatio {
		return validationErr("accent_color",
			fmt.Sprintf("contraste %.2f:1 contra el texto del tema %s, mínimo %.0f:1", ratio, theme, minContrastRatio))
	}
	return nil
}
