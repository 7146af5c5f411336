package service

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"leanbot-chat/internal/domain"
)

// NormalizedResponse es la tripleta canónica que consume la capa de
// presentación: clase de mensaje, payload estructurado y texto limpio.
type NormalizedResponse struct {
	Kind        domain.Kind
	Products    []domain.ProductRecord
	Orders      []domain.OrderRecord
	DisplayText string
}

// ResponseNormalizer clasifica la respuesta cruda del webhook. El webhook no
// garantiza schema alguno (a veces anidado, a veces plano, a veces texto), así
// que la clasificación es una lista de reglas ordenadas donde gana la primera
// que aplique. Normalize nunca falla: cualquier payload inservible degrada a
// texto plano.
type ResponseNormalizer struct{}

// DefaultResponseNormalizer permite uso directo sin instanciar.
var DefaultResponseNormalizer = ResponseNormalizer{}

// classifyInput es el estado de trabajo de las reglas: el valor raíz parseado
// y el objeto efectivo tras el unwrap de payloads doblemente envueltos.
type classifyInput struct {
	value       any
	obj         map[string]any
	raw         string
	wrappedText string
}

type classifyRule struct {
	name    string
	applies func(in classifyInput) bool
	apply   func(in classifyInput) NormalizedResponse
}

// El orden es una política de desempate deliberada, no un accidente.
var classifyRules = []classifyRule{
	{name: "type-field", applies: hasTypeField, apply: applyTypeField},
	{name: "output-field", applies: hasOutputField, apply: applyOutputField},
	{name: "bare-string", applies: isBareString, apply: applyBareString},
	{name: "plain-value", applies: func(classifyInput) bool { return true }, apply: applyPlainValue},
}

// Normalize convierte el body crudo en {kind, payload, texto}.
func (ResponseNormalizer) Normalize(raw string) NormalizedResponse {
	trimmed := strings.TrimSpace(raw)

	var parsed any
	if err := json.Unmarshal([]byte(trimmed), &parsed); err != nil {
		return NormalizedResponse{Kind: domain.KindText, DisplayText: trimmed}
	}

	in := buildClassifyInput(parsed, trimmed)

	var res NormalizedResponse
	for _, rule := range classifyRules {
		if rule.applies(in) {
			res = rule.apply(in)
			break
		}
	}

	res = enforcePayloadInvariant(res)
	if res.Kind == domain.KindProductList {
		res.DisplayText = cleanProductDisplayText(res.DisplayText)
	}
	res.DisplayText = strings.TrimSpace(res.DisplayText)
	return res
}

// buildClassifyInput aplica el unwrap de un nivel: si "output" es un objeto
// que a su vez trae type o un array products/data, ese objeto anidado pasa a
// ser la respuesta efectiva y su texto queda como candidato a display.
func buildClassifyInput(parsed any, raw string) classifyInput {
	in := classifyInput{value: parsed, raw: raw}
	obj, ok := parsed.(map[string]any)
	if !ok {
		return in
	}
	in.obj = obj

	nested, ok := obj["output"].(map[string]any)
	if !ok {
		return in
	}
	_, hasType := nested["type"]
	if hasType || isArray(nested["products"]) || isArray(nested["data"]) {
		in.obj = nested
		in.wrappedText = firstStringOf(nested, "output", "content")
	}
	return in
}

func hasTypeField(in classifyInput) bool {
	return in.obj != nil && stringField(in.obj, "type") != ""
}

var orderTypeHints = []string{"order", "delivery", "confirmation", "notification"}

var statusTypeWords = map[string]bool{
	"shipped":    true,
	"delivered":  true,
	"delayed":    true,
	"processing": true,
	"pending":    true,
}

func applyTypeField(in classifyInput) NormalizedResponse {
	obj := in.obj
	typ := strings.ToLower(strings.TrimSpace(stringField(obj, "type")))

	display := firstStringOf(obj, "output", "content")
	if display == "" {
		display = in.wrappedText
	}
	if display == "" {
		display = prettyJSON(obj)
	}

	switch {
	case strings.Contains(typ, "product"):
		return NormalizedResponse{
			Kind:        domain.KindProductList,
			Products:    decodeProducts(firstArrayOf(obj, "products", "data")),
			DisplayText: display,
		}
	case isOrderType(typ):
		return NormalizedResponse{
			Kind:        domain.KindOrderStatus,
			Orders:      []domain.OrderRecord{buildOrderRecord(obj, display)},
			DisplayText: display,
		}
	default:
		// Type sin clasificar: se conserva literal y el consumidor lo
		// renderiza como texto.
		return NormalizedResponse{Kind: domain.Kind(typ), DisplayText: display}
	}
}

func isOrderType(typ string) bool {
	for _, hint := range orderTypeHints {
		if strings.Contains(typ, hint) {
			return true
		}
	}
	return statusTypeWords[typ]
}

func hasOutputField(in classifyInput) bool {
	if in.obj == nil {
		return false
	}
	_, ok := in.obj["output"]
	return ok
}

func applyOutputField(in classifyInput) NormalizedResponse {
	obj := in.obj
	output := obj["output"]
	outputStr, outputIsString := output.(string)

	// products o data como hermanos de output en el nivel superior.
	if arr := firstArrayOf(obj, "products", "data"); arr != nil {
		return NormalizedResponse{
			Kind:        domain.KindProductList,
			Products:    decodeProducts(arr),
			DisplayText: outputStr,
		}
	}

	// output es un objeto que trae products.
	if nested, ok := output.(map[string]any); ok {
		if arr, ok := nested["products"].([]any); ok {
			display := stringField(nested, "output")
			if display == "" {
				display = in.wrappedText
			}
			return NormalizedResponse{
				Kind:        domain.KindProductList,
				Products:    decodeProducts(arr),
				DisplayText: display,
			}
		}
	}

	// output es directamente un array de productos.
	if arr, ok := output.([]any); ok {
		return NormalizedResponse{
			Kind:        domain.KindProductList,
			Products:    decodeProducts(arr),
			DisplayText: "Products",
		}
	}

	// orderId o status explícitos marcan estado de pedido.
	if truthy(obj["orderId"]) || truthy(obj["status"]) {
		display := outputStr
		if display == "" {
			display = prettyJSON(obj)
		}
		return NormalizedResponse{
			Kind:        domain.KindOrderStatus,
			Orders:      []domain.OrderRecord{buildOrderRecord(obj, display)},
			DisplayText: display,
		}
	}

	// output string con un JSON de productos embebido.
	if outputIsString && strings.Contains(outputStr, "products") {
		var embedded map[string]any
		if err := json.Unmarshal([]byte(outputStr), &embedded); err == nil {
			if arr, ok := embedded["products"].([]any); ok {
				display := stringField(embedded, "message")
				if display == "" {
					display = "Products"
				}
				return NormalizedResponse{
					Kind:        domain.KindProductList,
					Products:    decodeProducts(arr),
					DisplayText: display,
				}
			}
		}
		return NormalizedResponse{Kind: domain.KindText, DisplayText: outputStr}
	}

	// output es el texto a mostrar, tal cual.
	if outputIsString {
		return NormalizedResponse{Kind: domain.KindText, DisplayText: outputStr}
	}
	return NormalizedResponse{Kind: domain.KindText, DisplayText: prettyJSON(output)}
}

func isBareString(in classifyInput) bool {
	_, ok := in.value.(string)
	return ok
}

func applyBareString(in classifyInput) NormalizedResponse {
	s, _ := in.value.(string)
	return NormalizedResponse{Kind: domain.KindText, DisplayText: s}
}

func applyPlainValue(in classifyInput) NormalizedResponse {
	if in.obj != nil {
		if arr, ok := in.obj["products"].([]any); ok {
			display := stringField(in.obj, "message")
			if display == "" {
				display = "Products"
			}
			return NormalizedResponse{
				Kind:        domain.KindProductList,
				Products:    decodeProducts(arr),
				DisplayText: display,
			}
		}
		return NormalizedResponse{Kind: domain.KindText, DisplayText: prettyJSON(in.obj)}
	}
	if arr, ok := in.value.([]any); ok && len(arr) > 0 {
		return NormalizedResponse{
			Kind:        domain.KindProductList,
			Products:    decodeProducts(arr),
			DisplayText: "Products",
		}
	}
	return NormalizedResponse{Kind: domain.KindText, DisplayText: prettyJSON(in.value)}
}

// enforcePayloadInvariant degrada a texto cualquier clasificación que haya
// quedado sin payload.
func enforcePayloadInvariant(res NormalizedResponse) NormalizedResponse {
	switch res.Kind {
	case domain.KindProductList:
		if len(res.Products) == 0 {
			res.Kind = domain.KindText
			res.Products = nil
		}
	case domain.KindOrderStatus:
		if len(res.Orders) == 0 {
			res.Kind = domain.KindText
		}
	}
	return res
}

// buildOrderRecord arma exactamente un OrderRecord: campo explícito no vacío
// gana; vacío o ausente cae al extractor sobre el texto candidato.
func buildOrderRecord(obj map[string]any, displayText string) domain.OrderRecord {
	rec := domain.OrderRecord{
		OrderID:              stringField(obj, "orderId"),
		Status:               stringField(obj, "status"),
		CouponCode:           stringField(obj, "couponCode"),
		ExpectedDeliveryDate: firstStringOf(obj, "expectedDeliveryDate", "deliveryDate"),
		Items:                decodeOrderItems(obj["items"]),
	}
	if rec.OrderID == "" {
		rec.OrderID = ExtractOrderID(displayText)
	}
	if rec.Status == "" {
		rec.Status = ExtractStatus(displayText)
	}
	if rec.CouponCode == "" {
		rec.CouponCode = ExtractCouponCode(displayText)
	}
	if rec.ExpectedDeliveryDate == "" {
		rec.ExpectedDeliveryDate = ExtractDeliveryDate(displayText)
	}
	return rec
}

// decodeProducts tolera entradas de cualquier forma: aplica defaults en lugar
// de descartar, así el largo del payload siempre coincide con el del array
// origen.
func decodeProducts(arr []any) []domain.ProductRecord {
	if arr == nil {
		return nil
	}
	out := make([]domain.ProductRecord, 0, len(arr))
	for i, item := range arr {
		rec := domain.ProductRecord{ID: i, Name: "Unknown Product"}
		if m, ok := item.(map[string]any); ok {
			if id, ok := intValue(m["id"]); ok {
				rec.ID = id
			}
			if name := stringField(m, "name"); name != "" {
				rec.Name = name
			}
			if price, ok := floatValue(m["price"]); ok {
				rec.Price = price
			}
			rec.ImageURL = firstStringOf(m, "imageUrl", "image")
		}
		out = append(out, rec)
	}
	return out
}

func decodeOrderItems(v any) []domain.OrderItem {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]domain.OrderItem, 0, len(arr))
	for _, item := range arr {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		it := domain.OrderItem{Name: stringField(m, "name")}
		if q, ok := intValue(m["quantity"]); ok {
			it.Quantity = q
		}
		if p, ok := floatValue(m["price"]); ok {
			it.Price = p
		}
		out = append(out, it)
	}
	return out
}

var (
	// Línea de bullet markdown que repite un producto: bullet opcional,
	// nombre en negrita, separador y precio en negrita o con sufijo SAR.
	productBulletPattern = regexp.MustCompile(`^\s*[-*]?\s*\*\*[^*]+\*\*\s*[-–—:]\s*(?:\*\*[^*]+\*\*|[^*]*\bSAR\b[^*]*)\s*$`)
	blankRunPattern      = regexp.MustCompile(`\n{3,}`)
)

// cleanProductDisplayText quita las líneas que repiten la lista de productos
// en bullets markdown, recorta cada línea y colapsa corridas de líneas en
// blanco a una sola.
func cleanProductDisplayText(text string) string {
	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if productBulletPattern.MatchString(line) {
			continue
		}
		kept = append(kept, strings.TrimSpace(line))
	}
	joined := strings.Join(kept, "\n")
	joined = blankRunPattern.ReplaceAllString(joined, "\n\n")
	return strings.TrimSpace(joined)
}

func isArray(v any) bool {
	_, ok := v.([]any)
	return ok
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func firstStringOf(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func firstArrayOf(m map[string]any, keys ...string) []any {
	for _, k := range keys {
		if arr, ok := m[k].([]any); ok {
			return arr
		}
	}
	return nil
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(t) != ""
	case float64:
		return t != 0
	case bool:
		return t
	default:
		return true
	}
}

func intValue(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		return int(t), true
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return n, true
		}
	}
	return 0, false
}

func floatValue(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

func prettyJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ""
	}
	return string(b)
}
