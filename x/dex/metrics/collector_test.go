package metrics

import "testing"

func TestGetCollectorIsASingleton(t *testing.T) {
	a := GetCollector()
	b := GetCollector()
	if a != b {
		t.Fatalf("GetCollector returned distinct instances")
	}
}

func TestRecordHelpersDoNotPanic(t *testing.T) {
	c := GetCollector()
	c.RecordOrder("BASE/QUOTE", "Buy", "Created")
	c.RecordOrderLatency("BASE/QUOTE", 1.5)
	c.RecordMatchingLatency("BASE/QUOTE", 0.2)
	c.RecordTrade("BASE/QUOTE", 10)
	c.SetLadderDepth("BASE/QUOTE", "Sell", 3)
	c.RecordWSConnection(1)
	c.RecordWSConnection(-1)

	timer := NewTimer()
	if timer.ElapsedMs() < 0 {
		t.Fatalf("ElapsedMs = %v, want >= 0", timer.ElapsedMs())
	}
}
