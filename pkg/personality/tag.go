package personality

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Tag identifies the kind of event the character reacts to.
// The declaration order is stable: it defines the one-hot index used by the network features.
type Tag int

const (
	// Player attitude
	TagPlayerComfort Tag = iota
	TagPlayerEncourage
	TagPlayerApologize
	TagPlayerHarsh
	TagPlayerIgnorant
	TagPlayerObjectify

	// Honesty & promises
	TagPlayerKeepPromise
	TagPlayerBreakPromise
	TagPlayerLieDetected
	TagPlayerTransparency

	// Camp resources & security
	TagCampResourceUp
	TagCampResourceDown
	TagCampCriticalShortage
	TagCampSecurityImproved
	TagCampSecurityBreach

	// Personnel
	TagCampCasualty
	TagCampInjury
	TagCampSuccessfulRescue
	TagCampLossDueToDecisionPlayer
	TagCampLossAvoidedByPlayer

	// Weather & milestones
	TagWeatherStormStart
	TagWeatherStormPeak
	TagWeatherStormEnd
	TagMilestoneEarlyGame
	TagMilestoneMidGame
	TagMilestoneFinalStorm

	// Relationship meta-events
	TagMetaLongNoContact
	TagMetaFrequentCheckIn
	TagMetaUseResourceForHer
	TagMetaIgnoreHerNeed
	TagMetaTalkOnlyWhenNeed

	// TagCount is the number of defined tags.
	TagCount = int(iota)
)

// ErrUnknownTag is returned by ParseTag for names that match no tag.
var ErrUnknownTag = errors.New("unknown tag")

var tagNames = [TagCount]string{
	"player_comfort",
	"player_encourage",
	"player_apologize",
	"player_harsh",
	"player_ignorant",
	"player_objectify",
	"player_keep_promise",
	"player_break_promise",
	"player_lie_detected",
	"player_transparency",
	"camp_resource_up",
	"camp_resource_down",
	"camp_critical_shortage",
	"camp_security_improved",
	"camp_security_breach",
	"camp_casualty",
	"camp_injury",
	"camp_successful_rescue",
	"camp_loss_due_to_decision_player",
	"camp_loss_avoided_by_player",
	"weather_storm_start",
	"weather_storm_peak",
	"weather_storm_end",
	"milestone_early_game",
	"milestone_mid_game",
	"milestone_final_storm",
	"meta_long_no_contact",
	"meta_frequent_check_in",
	"meta_use_resource_for_her",
	"meta_ignore_her_need",
	"meta_talk_only_when_need",
}

var tagLookup = buildTagLookup()

func buildTagLookup() map[string]Tag {
	m := make(map[string]Tag, TagCount)
	for i, name := range tagNames {
		m[foldTagName(name)] = Tag(i)
	}
	return m
}

// foldTagName reduces a name to a separator-free, case-folded key so that
// "player_comfort", "Player_Comfort" and "PlayerComfort" compare equal.
func foldTagName(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '_', '-', ' ', '.':
			return -1
		}
		return r
	}, strings.TrimSpace(s))
	// Casers carry state and are not shared across goroutines.
	return cases.Fold().String(s)
}

// Valid reports whether t is one of the defined tags.
func (t Tag) Valid() bool {
	return t >= 0 && int(t) < TagCount
}

// String returns the snake_case name of the tag.
func (t Tag) String() string {
	if !t.Valid() {
		return fmt.Sprintf("tag(%d)", int(t))
	}
	return tagNames[t]
}

// Label returns a human-facing title such as "Player Comfort".
func (t Tag) Label() string {
	return cases.Title(language.English).String(strings.ReplaceAll(t.String(), "_", " "))
}

// ParseTag resolves a tag name. Matching ignores case and separators.
func ParseTag(s string) (Tag, error) {
	if t, ok := tagLookup[foldTagName(s)]; ok {
		return t, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTag, s)
}

// MarshalText implements encoding.TextMarshaler.
func (t Tag) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTag, int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Tag) UnmarshalText(b []byte) error {
	parsed, err := ParseTag(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Tags returns every tag in declaration order.
func Tags() []Tag {
	out := make([]Tag, TagCount)
	for i := range out {
		out[i] = Tag(i)
	}
	return out
}
