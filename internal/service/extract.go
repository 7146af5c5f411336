package service

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Extractores de campos sobre texto libre. Son funciones puras e
// idempotentes: devuelven "" cuando no hay match.

var orderIDPattern = regexp.MustCompile(`(?i)\bORD-?\d+\b`)

// ExtractOrderID devuelve el primer token con forma ORD[-]dígitos, conservando
// el guión tal como aparece en el texto.
func ExtractOrderID(text string) string {
	return orderIDPattern.FindString(text)
}

var (
	emphasisReplacer = strings.NewReplacer("*", "", "_", "")

	// Los patrones se prueban en orden; gana el primero que matchee. El token
	// se exige en mayúsculas para no confundir palabras comunes con códigos.
	couponPhrasePattern = regexp.MustCompile(`\b(?i:coupon\s+code|code)\s*:?\s*["']?([A-Z0-9]{4,})["']?`)
	couponQuotedPattern = regexp.MustCompile(`["']([A-Z0-9]{4,})["']`)
	couponBarePattern   = regexp.MustCompile(`\b[A-Z]{4,}[0-9]+\b`)
	couponPrefixPattern = regexp.MustCompile(`\b(?i:code|coupon)\b[:\s]+([A-Z0-9]{4,})\b`)
)

// ExtractCouponCode busca un código de cupón en el texto, quitando primero los
// marcadores de énfasis de markdown.
func ExtractCouponCode(text string) string {
	cleaned := emphasisReplacer.Replace(text)

	if m := couponPhrasePattern.FindStringSubmatch(cleaned); len(m) == 2 {
		return m[1]
	}
	if m := couponQuotedPattern.FindStringSubmatch(cleaned); len(m) == 2 {
		return m[1]
	}
	if m := couponBarePattern.FindString(cleaned); m != "" {
		return m
	}
	if m := couponPrefixPattern.FindStringSubmatch(cleaned); len(m) == 2 {
		return m[1]
	}
	return ""
}

type statusCheck struct {
	word      string
	canonical string
	boundary  *regexp.Regexp
}

// El orden de chequeo es deliberado y fija el desempate: Shipped se evalúa
// antes que Delivered aunque ambos aparezcan en el texto.
var statusChecks = buildStatusChecks()

func buildStatusChecks() []statusCheck {
	entries := []struct{ word, canonical string }{
		{"shipped", "Shipped"},
		{"delivered", "Delivered"},
		{"delayed", "Delayed"},
		{"processing", "Processing"},
		{"pending", "Pending"},
		{"cancelled", "Cancelled"},
		{"canceled", "Cancelled"},
	}
	checks := make([]statusCheck, 0, len(entries))
	for _, e := range entries {
		checks = append(checks, statusCheck{
			word:      e.word,
			canonical: e.canonical,
			boundary:  regexp.MustCompile(`(?i)\b` + e.word + `\b`),
		})
	}
	return checks
}

// ExtractStatus devuelve la etiqueta canónica del primer estado encontrado
// según la prioridad fija. Si ningún estado aparece como palabra completa,
// reintenta como substring con el mismo orden.
func ExtractStatus(text string) string {
	for _, c := range statusChecks {
		if c.boundary.MatchString(text) {
			return c.canonical
		}
	}
	lower := strings.ToLower(text)
	for _, c := range statusChecks {
		if strings.Contains(lower, c.word) {
			return c.canonical
		}
	}
	return ""
}

var (
	isoDatePattern     = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)
	slashDatePattern   = regexp.MustCompile(`\b\d{4}/\d{2}/\d{2}\b`)
	contextDatePattern = regexp.MustCompile(`(?i)\b(?:on|before|by)\s+(\d{4}-\d{2}-\d{2})\b`)
	writtenDatePattern = regexp.MustCompile(`(?i)\b(?:(?:on|before|by)\s+)?(January|February|March|April|May|June|July|August|September|October|November|December)\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4})`)
)

// ExtractDeliveryDate busca una fecha de entrega. Las fechas escritas con mes
// en palabras se reformatean a YYYY-MM-DD; si el parseo falla se devuelve el
// fragmento tal cual apareció.
func ExtractDeliveryDate(text string) string {
	if m := isoDatePattern.FindString(text); m != "" {
		return m
	}
	if m := slashDatePattern.FindString(text); m != "" {
		return m
	}
	if m := contextDatePattern.FindStringSubmatch(text); len(m) == 2 {
		return m[1]
	}
	if m := writtenDatePattern.FindStringSubmatch(text); len(m) == 4 {
		parsed, err := time.Parse("January 2 2006", fmt.Sprintf("%s %s %s", m[1], m[2], m[3]))
		if err != nil {
			return strings.TrimSpace(m[0])
		}
		return parsed.Format("2006-01-02")
	}
	return ""
}
