package market

import "testing"

func TestWeightedFillPrice(t *testing.T) {
	resp := orderResponse{
		Fills: []struct {
			Price string `json:"price"`
			Qty   string `json:"qty"`
		}{
			{Price: "100", Qty: "1"},
			{Price: "110", Qty: "3"},
		},
	}
	got, err := weightedFillPrice(resp)
	if err != nil {
		t.Fatalf("weightedFillPrice: %v", err)
	}
	if got != 107.5 {
		t.Fatalf("fill = %v, want 107.5", got)
	}
}

func TestWeightedFillPriceNoFills(t *testing.T) {
	got, err := weightedFillPrice(orderResponse{})
	if err != nil {
		t.Fatalf("weightedFillPrice: %v", err)
	}
	if got != 0 {
		t.Fatalf("fill = %v, want 0 fallback", got)
	}
}

func TestWeightedFillPriceBadNumber(t *testing.T) {
	resp := orderResponse{
		Fills: []struct {
			Price string `json:"price"`
			Qty   string `json:"qty"`
		}{{Price: "x", Qty: "1"}},
	}
	if _, err := weightedFillPrice(resp); err == nil {
		t.Fatal("bad fill price must error")
	}
}
