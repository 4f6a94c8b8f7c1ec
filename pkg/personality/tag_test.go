package personality

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestParseTag(t *testing.T) {
	tests := []struct {
		in   string
		want Tag
	}{
		{"player_comfort", TagPlayerComfort},
		{"Player_Comfort", TagPlayerComfort},
		{"PlayerComfort", TagPlayerComfort},
		{"  camp_loss_due_to_decision_player ", TagCampLossDueToDecisionPlayer},
		{"META-FREQUENT-CHECK-IN", TagMetaFrequentCheckIn},
		{"weather storm peak", TagWeatherStormPeak},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTag(tt.in)
			if err != nil {
				t.Fatalf("ParseTag(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseTag(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseTag_Unknown(t *testing.T) {
	_, err := ParseTag("player_dance")
	if !errors.Is(err, ErrUnknownTag) {
		t.Fatalf("expected ErrUnknownTag, got %v", err)
	}
}

func TestTags_RoundTripNames(t *testing.T) {
	tags := Tags()
	if len(tags) != TagCount {
		t.Fatalf("Tags() returned %d, want %d", len(tags), TagCount)
	}
	if TagCount != 31 {
		t.Errorf("TagCount = %d, want 31", TagCount)
	}
	for i, tag := range tags {
		if int(tag) != i {
			t.Errorf("Tags()[%d] = %d", i, tag)
		}
		parsed, err := ParseTag(tag.String())
		if err != nil || parsed != tag {
			t.Errorf("round trip of %s gave %v, %v", tag, parsed, err)
		}
	}
}

func TestTag_Label(t *testing.T) {
	if got := TagPlayerKeepPromise.Label(); got != "Player Keep Promise" {
		t.Errorf("Label() = %q", got)
	}
	if got := Tag(99).String(); got != "tag(99)" {
		t.Errorf("String() of invalid tag = %q", got)
	}
}

func TestTag_JSON(t *testing.T) {
	ev := NewEvent(TagCampInjury)
	data, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back RawEvent
	if err := json.Unmarshal([]byte(`{"tag":"CampInjury","health":1}`), &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Tag != TagCampInjury {
		t.Errorf("decoded tag = %v", back.Tag)
	}
	if want := `"tag":"camp_injury"`; !strings.Contains(string(data), want) {
		t.Errorf("encoded %s, want it to contain %s", data, want)
	}
}
