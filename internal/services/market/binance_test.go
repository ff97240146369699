package market

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseKline(t *testing.T) {
	row := []byte(`[1717200000000,"68000.1","68500.9","67900.0","68250.5","123.456",1717203599999,"0",100,"0","0","0"]`)
	var raw []json.RawMessage
	if err := json.Unmarshal(row, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	c, err := parseKline(raw)
	if err != nil {
		t.Fatalf("parseKline: %v", err)
	}
	if want := time.UnixMilli(1717200000000).UTC(); !c.OpenTime.Equal(want) {
		t.Fatalf("open time = %v, want %v", c.OpenTime, want)
	}
	if c.Open != 68000.1 || c.High != 68500.9 || c.Low != 67900.0 || c.Close != 68250.5 {
		t.Fatalf("ohlc = %+v", c)
	}
	if c.Volume != 123.456 {
		t.Fatalf("volume = %v", c.Volume)
	}
}

func TestParseKlineShortRow(t *testing.T) {
	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(`[1717200000000,"1","2"]`), &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, err := parseKline(raw); err == nil {
		t.Fatal("expected error for short row")
	}
}

func TestParseKlineBadNumber(t *testing.T) {
	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(`[1717200000000,"x","2","3","4","5"]`), &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, err := parseKline(raw); err == nil {
		t.Fatal("expected error for non-numeric field")
	}
}

func TestQuoteAssetOf(t *testing.T) {
	cases := map[string]string{
		"BTCUSDT": "USDT",
		"ETHBUSD": "BUSD",
		"BTCUSD":  "USD",
		"BTCEUR":  "USDT",
	}
	for symbol, want := range cases {
		if got := quoteAssetOf(symbol); got != want {
			t.Errorf("quoteAssetOf(%s) = %s, want %s", symbol, got, want)
		}
	}
}
