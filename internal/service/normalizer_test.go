package service

import (
	"strings"
	"testing"

	"leanbot-chat/internal/domain"
)

func TestNormalize_PlainText(t *testing.T) {
	cases := []string{
		"Hola, ¿en qué puedo ayudarte?",
		"  texto con espacios  ",
		"not { valid json",
		"",
	}
	for _, raw := range cases {
		res := DefaultResponseNormalizer.Normalize(raw)
		if res.Kind != domain.KindText {
			t.Fatalf("Normalize(%q) kind = %q, want text", raw, res.Kind)
		}
		if res.DisplayText != strings.TrimSpace(raw) {
			t.Fatalf("Normalize(%q) display = %q, want trimmed input", raw, res.DisplayText)
		}
		if res.Products != nil || res.Orders != nil {
			t.Fatalf("Normalize(%q) unexpected payload", raw)
		}
	}
}

func TestNormalize_ProductListWithType(t *testing.T) {
	raw := `{"output":"Here are some products","type":"product-list","products":[` +
		`{"id":1,"name":"Laptop","price":3500,"imageUrl":"url1"},` +
		`{"id":2,"name":"Mouse","price":80,"imageUrl":"url2"}]}`

	res := DefaultResponseNormalizer.Normalize(raw)
	if res.Kind != domain.KindProductList {
		t.Fatalf("kind = %q, want product-list", res.Kind)
	}
	if len(res.Products) != 2 {
		t.Fatalf("products len = %d, want 2", len(res.Products))
	}
	if res.Products[0].Name != "Laptop" || res.Products[0].Price != 3500 {
		t.Fatalf("unexpected first product: %+v", res.Products[0])
	}
	if res.DisplayText != "Here are some products" {
		t.Fatalf("display = %q", res.DisplayText)
	}
}

func TestNormalize_TypeVariants(t *testing.T) {
	t.Run("product_recommendation también es lista", func(t *testing.T) {
		raw := `{"type":"PRODUCT_RECOMMENDATION","output":"mira esto","data":[{"id":7,"name":"Teclado","price":120}]}`
		res := DefaultResponseNormalizer.Normalize(raw)
		if res.Kind != domain.KindProductList {
			t.Fatalf("kind = %q, want product-list", res.Kind)
		}
		if len(res.Products) != 1 || res.Products[0].ID != 7 {
			t.Fatalf("unexpected payload: %+v", res.Products)
		}
	})

	t.Run("type product sin array degrada a texto", func(t *testing.T) {
		raw := `{"type":"product-list","output":"no tengo productos ahora"}`
		res := DefaultResponseNormalizer.Normalize(raw)
		if res.Kind != domain.KindText {
			t.Fatalf("kind = %q, want text downgrade", res.Kind)
		}
		if res.DisplayText != "no tengo productos ahora" {
			t.Fatalf("display = %q", res.DisplayText)
		}
	})

	t.Run("type product con array vacío degrada a texto", func(t *testing.T) {
		raw := `{"type":"some product thing","products":[],"output":"nada"}`
		res := DefaultResponseNormalizer.Normalize(raw)
		if res.Kind != domain.KindText {
			t.Fatalf("kind = %q, want text downgrade", res.Kind)
		}
	})

	t.Run("type order_status clasifica pedido", func(t *testing.T) {
		raw := `{"type":"order_status","output":"Your order has been delivered","orderId":"ORD-1001","status":"Delivered","deliveryDate":"2024-12-05"}`
		res := DefaultResponseNormalizer.Normalize(raw)
		if res.Kind != domain.KindOrderStatus {
			t.Fatalf("kind = %q, want order-status", res.Kind)
		}
		if len(res.Orders) != 1 {
			t.Fatalf("orders len = %d, want 1", len(res.Orders))
		}
		rec := res.Orders[0]
		if rec.OrderID != "ORD-1001" || rec.Status != "Delivered" {
			t.Fatalf("unexpected record: %+v", rec)
		}
		if rec.ExpectedDeliveryDate != "2024-12-05" {
			t.Fatalf("expected delivery date from deliveryDate alias, got %q", rec.ExpectedDeliveryDate)
		}
	})

	t.Run("type shipped cuenta como estado", func(t *testing.T) {
		raw := `{"type":"shipped","output":"Order ORD-55 left the warehouse"}`
		res := DefaultResponseNormalizer.Normalize(raw)
		if res.Kind != domain.KindOrderStatus {
			t.Fatalf("kind = %q, want order-status", res.Kind)
		}
		if res.Orders[0].OrderID != "ORD-55" {
			t.Fatalf("expected extractor fallback for orderId, got %+v", res.Orders[0])
		}
	})

	t.Run("type desconocido pasa literal", func(t *testing.T) {
		raw := `{"type":"greeting","output":"hola"}`
		res := DefaultResponseNormalizer.Normalize(raw)
		if res.Kind != domain.Kind("greeting") {
			t.Fatalf("kind = %q, want literal greeting", res.Kind)
		}
		if res.DisplayText != "hola" {
			t.Fatalf("display = %q", res.DisplayText)
		}
	})
}

func TestNormalize_OutputBranches(t *testing.T) {
	t.Run("products hermano de output", func(t *testing.T) {
		raw := `{"output":"mira","products":[{"id":1,"name":"A","price":10}]}`
		res := DefaultResponseNormalizer.Normalize(raw)
		if res.Kind != domain.KindProductList || len(res.Products) != 1 {
			t.Fatalf("unexpected result: %+v", res)
		}
		if res.DisplayText != "mira" {
			t.Fatalf("display = %q", res.DisplayText)
		}
	})

	t.Run("data hermano de output", func(t *testing.T) {
		raw := `{"output":"resultados","data":[{"id":3,"name":"B","price":5}]}`
		res := DefaultResponseNormalizer.Normalize(raw)
		if res.Kind != domain.KindProductList || len(res.Products) != 1 {
			t.Fatalf("unexpected result: %+v", res)
		}
	})

	t.Run("output como array es lista de productos", func(t *testing.T) {
		raw := `{"output":[{"id":1,"name":"A","price":10},{"id":2,"name":"B","price":20}]}`
		res := DefaultResponseNormalizer.Normalize(raw)
		if res.Kind != domain.KindProductList || len(res.Products) != 2 {
			t.Fatalf("unexpected result: %+v", res)
		}
		if res.DisplayText != "Products" {
			t.Fatalf("display = %q, want Products", res.DisplayText)
		}
	})

	t.Run("orderId junto a output marca pedido", func(t *testing.T) {
		raw := `{"output":"Use coupon code SORRY10 for the delay","orderId":"ORD-42","status":""}`
		res := DefaultResponseNormalizer.Normalize(raw)
		if res.Kind != domain.KindOrderStatus {
			t.Fatalf("kind = %q, want order-status", res.Kind)
		}
		rec := res.Orders[0]
		if rec.OrderID != "ORD-42" {
			t.Fatalf("explicit orderId must win, got %q", rec.OrderID)
		}
		// status explícito pero vacío: corre el extractor (que aquí tampoco
		// encuentra nada) y el cupón sale del texto.
		if rec.CouponCode != "SORRY10" {
			t.Fatalf("expected coupon from text, got %q", rec.CouponCode)
		}
	})

	t.Run("output string con JSON de productos embebido", func(t *testing.T) {
		raw := `{"output":"{\"message\":\"Top picks\",\"products\":[{\"id\":9,\"name\":\"Z\",\"price\":1}]}"}`
		res := DefaultResponseNormalizer.Normalize(raw)
		if res.Kind != domain.KindProductList || len(res.Products) != 1 {
			t.Fatalf("unexpected result: %+v", res)
		}
		if res.DisplayText != "Top picks" {
			t.Fatalf("display = %q", res.DisplayText)
		}
	})

	t.Run("output string que menciona products pero no parsea", func(t *testing.T) {
		raw := `{"output":"We have many products in store"}`
		res := DefaultResponseNormalizer.Normalize(raw)
		if res.Kind != domain.KindText {
			t.Fatalf("kind = %q, want text", res.Kind)
		}
		if res.DisplayText != "We have many products in store" {
			t.Fatalf("display = %q", res.DisplayText)
		}
	})

	t.Run("output plano es el texto", func(t *testing.T) {
		raw := `{"output":"solo texto"}`
		res := DefaultResponseNormalizer.Normalize(raw)
		if res.Kind != domain.KindText || res.DisplayText != "solo texto" {
			t.Fatalf("unexpected result: %+v", res)
		}
	})
}

func TestNormalize_Unwrap(t *testing.T) {
	raw := `{"output":{"type":"product-list","output":"Nested picks","products":[{"id":1,"name":"A","price":10}]}}`
	res := DefaultResponseNormalizer.Normalize(raw)
	if res.Kind != domain.KindProductList {
		t.Fatalf("kind = %q, want product-list after unwrap", res.Kind)
	}
	if len(res.Products) != 1 {
		t.Fatalf("products len = %d", len(res.Products))
	}
	if res.DisplayText != "Nested picks" {
		t.Fatalf("display = %q", res.DisplayText)
	}
}

func TestNormalize_BareValues(t *testing.T) {
	t.Run("string JSON", func(t *testing.T) {
		res := DefaultResponseNormalizer.Normalize(`"hola directo"`)
		if res.Kind != domain.KindText || res.DisplayText != "hola directo" {
			t.Fatalf("unexpected result: %+v", res)
		}
	})

	t.Run("array raíz no vacío", func(t *testing.T) {
		res := DefaultResponseNormalizer.Normalize(`[{"id":1,"name":"A","price":2}]`)
		if res.Kind != domain.KindProductList || len(res.Products) != 1 {
			t.Fatalf("unexpected result: %+v", res)
		}
		if res.DisplayText != "Products" {
			t.Fatalf("display = %q", res.DisplayText)
		}
	})

	t.Run("array raíz vacío degrada a texto", func(t *testing.T) {
		res := DefaultResponseNormalizer.Normalize(`[]`)
		if res.Kind != domain.KindText {
			t.Fatalf("kind = %q, want text", res.Kind)
		}
	})

	t.Run("objeto sin campos conocidos se imprime legible", func(t *testing.T) {
		res := DefaultResponseNormalizer.Normalize(`{"foo":"bar"}`)
		if res.Kind != domain.KindText {
			t.Fatalf("kind = %q, want text", res.Kind)
		}
		if !strings.Contains(res.DisplayText, `"foo": "bar"`) {
			t.Fatalf("display = %q", res.DisplayText)
		}
	})

	t.Run("objeto con products sin output", func(t *testing.T) {
		res := DefaultResponseNormalizer.Normalize(`{"message":"ofertas","products":[{"id":1,"name":"A","price":2}]}`)
		if res.Kind != domain.KindProductList || res.DisplayText != "ofertas" {
			t.Fatalf("unexpected result: %+v", res)
		}
	})
}

func TestNormalize_ProductDefaults(t *testing.T) {
	raw := `{"output":"x","products":[{"price":"12.5","image":"img.png"},{"id":"4","name":"Con nombre"},"suelto"]}`
	res := DefaultResponseNormalizer.Normalize(raw)
	if len(res.Products) != 3 {
		t.Fatalf("products len = %d, want 3 (payload length matches source)", len(res.Products))
	}
	first := res.Products[0]
	if first.ID != 0 || first.Name != "Unknown Product" || first.Price != 12.5 || first.ImageURL != "img.png" {
		t.Fatalf("unexpected defaults: %+v", first)
	}
	second := res.Products[1]
	if second.ID != 4 || second.Name != "Con nombre" || second.Price != 0 {
		t.Fatalf("unexpected second: %+v", second)
	}
	third := res.Products[2]
	if third.ID != 2 || third.Name != "Unknown Product" {
		t.Fatalf("non-object entry must fall back to index: %+v", third)
	}
}

func TestNormalize_OrderRecordFallbacks(t *testing.T) {
	raw := `{"type":"order notification","output":"Your order ORD-88 was shipped. Delivered by 2024-12-05. Use coupon code SORRY10.","items":[{"name":"Mouse","quantity":2,"price":80}]}`
	res := DefaultResponseNormalizer.Normalize(raw)
	if res.Kind != domain.KindOrderStatus {
		t.Fatalf("kind = %q", res.Kind)
	}
	rec := res.Orders[0]
	if rec.OrderID != "ORD-88" {
		t.Fatalf("orderId fallback = %q", rec.OrderID)
	}
	if rec.Status != "Shipped" {
		t.Fatalf("status fallback = %q", rec.Status)
	}
	if rec.CouponCode != "SORRY10" {
		t.Fatalf("coupon fallback = %q", rec.CouponCode)
	}
	if rec.ExpectedDeliveryDate != "2024-12-05" {
		t.Fatalf("delivery date fallback = %q", rec.ExpectedDeliveryDate)
	}
	if len(rec.Items) != 1 || rec.Items[0].Quantity != 2 {
		t.Fatalf("unexpected items: %+v", rec.Items)
	}
}

func TestCleanProductDisplayText(t *testing.T) {
	in := "Here are today's picks:\n" +
		"- **Laptop Pro** - **3500 SAR**\n" +
		"* **Mouse** – 80 SAR\n" +
		"**Keyboard** : **120**\n" +
		"\n\n\n" +
		"   Enjoy!   "
	got := cleanProductDisplayText(in)
	if strings.Contains(got, "Laptop Pro") || strings.Contains(got, "Mouse") {
		t.Fatalf("bullet lines not stripped: %q", got)
	}
	if strings.Contains(got, "\n\n\n") {
		t.Fatalf("blank run not collapsed: %q", got)
	}
	if !strings.HasPrefix(got, "Here are today's picks:") || !strings.HasSuffix(got, "Enjoy!") {
		t.Fatalf("unexpected cleaned text: %q", got)
	}
}

func TestNormalize_NeverPanics(t *testing.T) {
	inputs := []string{
		`{"output":null}`,
		`{"type":null}`,
		`{"output":{"products":"not-an-array"}}`,
		`{"products":{"id":1}}`,
		`null`,
		`true`,
		`{"output":12}`,
	}
	for _, raw := range inputs {
		res := DefaultResponseNormalizer.Normalize(raw)
		if res.Kind == domain.KindProductList && len(res.Products) == 0 {
			t.Fatalf("invariant broken for %q", raw)
		}
		if res.Kind == domain.KindOrderStatus && len(res.Orders) == 0 {
			t.Fatalf("invariant broken for %q", raw)
		}
	}
}
