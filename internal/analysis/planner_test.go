package analysis

import (
	"testing"
)

func TestThresholds_Validate(t *testing.T) {
	tests := []struct {
		name    string
		th      Thresholds
		wantErr bool
	}{
		{"defaults", DefaultThresholds(), false},
		{"zero optimal", Thresholds{0, 10, 100}, true},
		{"negative max optimal", Thresholds{5, -1, 100}, true},
		{"zero total", Thresholds{5, 10, 0}, true},
		{"optimal above max", Thresholds{20, 10, 100}, true},
		{"optimal equals max", Thresholds{10, 10, 100}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.th.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPlan_Modes(t *testing.T) {
	th := DefaultThresholds()
	tests := []struct {
		name       string
		tokens     int
		wantMode   Mode
		wantChunks int
		wantErr    func(error) bool
	}{
		{"empty", 0, ModeSingle, 1, nil},
		{"scenario A single", 3000, ModeSingle, 1, nil},
		{"just below band", 3614, ModeSingle, 1, nil},
		{"band low edge", 3615, ModeNoOp, 0, nil},
		{"scenario B optimal", 4820, ModeNoOp, 0, nil},
		{"band high edge", 6025, ModeNoOp, 0, nil},
		{"just above band", 6026, ModeSingle, 1, nil},
		{"just below max optimal", 9819, ModeSingle, 1, nil},
		{"exactly max optimal", 9820, ModeChunked, 1, nil},
		{"one over max optimal", 9821, ModeChunked, 2, nil},
		{"scenario C", 20000, ModeChunked, 3, nil},
		{"just below reject", 119999, ModeChunked, 13, nil},
		{"reject threshold", 120000, 0, 0, IsLimitExceeded},
		{"scenario E", 121000, 0, 0, IsLimitExceeded},
		{"negative", -1, 0, 0, IsInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := th.Plan(tt.tokens)
			if tt.wantErr != nil {
				if !tt.wantErr(err) {
					t.Fatalf("Plan(%d) error = %v, want classified error", tt.tokens, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Plan(%d) error = %v", tt.tokens, err)
			}
			if plan.Mode != tt.wantMode {
				t.Errorf("Mode = %v, want %v", plan.Mode, tt.wantMode)
			}
			if len(plan.Chunks) != tt.wantChunks {
				t.Errorf("len(Chunks) = %d, want %d", len(plan.Chunks), tt.wantChunks)
			}
			if plan.TokenCount != tt.tokens {
				t.Errorf("TokenCount = %d, want %d", plan.TokenCount, tt.tokens)
			}
		})
	}
}

func TestPlan_LimitExceededCarriesCount(t *testing.T) {
	_, err := DefaultThresholds().Plan(121000)
	ae := AsError(err)
	if ae.TokenCount != 121000 {
		t.Errorf("TokenCount = %d, want 121000", ae.TokenCount)
	}
	if DefaultThresholds().RejectAt() != 120000 {
		t.Errorf("RejectAt() = %d, want 120000", DefaultThresholds().RejectAt())
	}
}

func TestPlan_ScenarioCSpans(t *testing.T) {
	plan, err := DefaultThresholds().Plan(20000)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}

	want := []Chunk{
		{Index: 0, Total: 3, StartToken: 0, EndToken: 9820, Position: PositionFirst},
		{Index: 1, Total: 3, StartToken: 9820, EndToken: 19640, Position: PositionMiddle},
		{Index: 2, Total: 3, StartToken: 19640, EndToken: 20000, Position: PositionLast},
	}
	if len(plan.Chunks) != len(want) {
		t.Fatalf("len(Chunks) = %d, want %d", len(plan.Chunks), len(want))
	}
	for i, c := range plan.Chunks {
		if c != want[i] {
			t.Errorf("chunk %d = %+v, want %+v", i, c, want[i])
		}
	}
	if !plan.Chunks[0].IsFirst() || plan.Chunks[0].IsLast() {
		t.Error("chunk 0 should be first only")
	}
	if !plan.Chunks[2].IsLast() || plan.Chunks[2].IsFirst() {
		t.Error("chunk 2 should be last only")
	}
}

func TestPlan_SingleChunkChunkedPlanIsFirstAndLast(t *testing.T) {
	plan, err := DefaultThresholds().Plan(9820)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	c := plan.Chunks[0]
	if c.Position != PositionFirst {
		t.Errorf("Position = %v, want first", c.Position)
	}
	if !c.IsFirst() || !c.IsLast() {
		t.Errorf("IsFirst=%v IsLast=%v, want both true", c.IsFirst(), c.IsLast())
	}
}

func TestPlan_ChunksPartitionRange(t *testing.T) {
	th := Thresholds{OptimalTokenLen: 10, MaxOptimalTokenLen: 37, MaxTotalTokens: 1_000_000}
	for tokens := th.MaxOptimalTokenLen; tokens < 2000; tokens += 13 {
		plan, err := th.Plan(tokens)
		if err != nil {
			t.Fatalf("Plan(%d) error = %v", tokens, err)
		}
		if plan.Mode != ModeChunked {
			t.Fatalf("Plan(%d) mode = %v, want chunked", tokens, plan.Mode)
		}

		wantCount := (tokens + th.MaxOptimalTokenLen - 1) / th.MaxOptimalTokenLen
		if len(plan.Chunks) != wantCount {
			t.Fatalf("Plan(%d) chunks = %d, want %d", tokens, len(plan.Chunks), wantCount)
		}

		next := 0
		for i, c := range plan.Chunks {
			if c.StartToken != next {
				t.Fatalf("Plan(%d) chunk %d starts at %d, want %d", tokens, i, c.StartToken, next)
			}
			if c.Len() <= 0 || c.Len() > th.MaxOptimalTokenLen {
				t.Fatalf("Plan(%d) chunk %d len %d out of (0, %d]", tokens, i, c.Len(), th.MaxOptimalTokenLen)
			}
			if c.Total != wantCount || c.Index != i {
				t.Fatalf("Plan(%d) chunk %d index/total = %d/%d", tokens, i, c.Index, c.Total)
			}
			next = c.EndToken
		}
		if next != tokens {
			t.Fatalf("Plan(%d) covers up to %d", tokens, next)
		}
	}
}

func TestMode_String(t *testing.T) {
	tests := []struct {
		mode Mode
		want string
	}{
		{ModeSingle, "single"},
		{ModeNoOp, "no_op"},
		{ModeChunked, "chunked"},
	}
	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.want {
			t.Errorf("Mode(%d).String() = %q, want %q", tt.mode, got, tt.want)
		}
	}
}
