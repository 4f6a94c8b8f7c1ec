package personality

// neutralAxes is the reading for tags with no specific interpretation.
var neutralAxes = SemanticAxes{Control: 0.5, Novelty: 0.3, Focus: 0.5}

// axes starts from the neutral reading so table rows only list what differs.
func axes(set func(*SemanticAxes)) SemanticAxes {
	a := neutralAxes
	set(&a)
	return a
}

var classifierTable = [TagCount]SemanticAxes{
	TagPlayerComfort: axes(func(a *SemanticAxes) {
		a.Valence, a.Agency, a.Morality, a.Social, a.Control, a.Focus = 0.8, 1, 0.4, 1, 0.8, 1
	}),
	TagPlayerEncourage: axes(func(a *SemanticAxes) {
		a.Valence, a.Agency, a.Morality, a.Social, a.Control, a.Focus = 0.7, 1, 0.4, 0.6, 0.9, 1
	}),
	TagPlayerApologize: axes(func(a *SemanticAxes) {
		a.Valence, a.Agency, a.Morality, a.Social, a.Control, a.Focus = 0.3, 1, 0.6, 0.6, 0.6, 1
	}),
	TagPlayerHarsh: axes(func(a *SemanticAxes) {
		a.Valence, a.Agency, a.Morality, a.Social, a.Control, a.Focus = -0.8, 1, -0.3, -0.8, 0.7, 1
	}),
	TagPlayerIgnorant: axes(func(a *SemanticAxes) {
		a.Valence, a.Agency, a.Social, a.Focus = -0.4, 1, -0.5, 1
	}),
	TagPlayerObjectify: axes(func(a *SemanticAxes) {
		a.Valence, a.Agency, a.Morality, a.Social, a.Focus = -0.7, 1, -0.4, -0.9, 1
	}),

	TagPlayerKeepPromise: axes(func(a *SemanticAxes) {
		a.Valence, a.Agency, a.Morality, a.Social, a.Focus = 0.8, 1, 0.8, 0.7, 1
	}),
	TagPlayerBreakPromise: axes(func(a *SemanticAxes) {
		a.Valence, a.Agency, a.Morality, a.Social, a.Focus = -0.9, 1, -0.8, -0.7, 1
	}),
	TagPlayerLieDetected: axes(func(a *SemanticAxes) {
		a.Valence, a.Agency, a.Morality, a.Social, a.Focus = -0.9, 1, -0.8, -0.7, 1
	}),
	TagPlayerTransparency: axes(func(a *SemanticAxes) {
		a.Valence, a.Agency, a.Morality, a.Social, a.Focus = 0.2, 1, 0.5, 0.2, 1
	}),

	TagCampResourceUp: axes(func(a *SemanticAxes) {
		a.Valence, a.Control, a.Focus = 0.6, 0.8, 0
	}),
	TagCampResourceDown: axes(func(a *SemanticAxes) {
		a.Valence, a.Control, a.Focus = -0.6, 0.3, 0
	}),
	TagCampCriticalShortage: axes(func(a *SemanticAxes) {
		a.Valence, a.Control, a.Novelty, a.Focus = -0.9, 0.1, 0.7, 0
	}),
	TagCampSecurityImproved: axes(func(a *SemanticAxes) {
		a.Valence, a.Control, a.Focus = 0.5, 0.8, 0
	}),
	TagCampSecurityBreach: axes(func(a *SemanticAxes) {
		a.Valence, a.Control, a.Novelty, a.Focus = -0.7, 0.2, 0.7, 0
	}),

	TagCampCasualty: axes(func(a *SemanticAxes) {
		a.Valence, a.Control, a.Morality, a.Focus = -1, 0.1, -0.4, 0.4
	}),
	TagCampInjury: axes(func(a *SemanticAxes) {
		a.Valence, a.Control, a.Focus = -0.6, 0.3, 0.4
	}),
	TagCampSuccessfulRescue: axes(func(a *SemanticAxes) {
		a.Valence, a.Morality, a.Control, a.Novelty, a.Focus = 0.9, 0.8, 0.7, 0.8, 0.6
	}),
	TagCampLossDueToDecisionPlayer: axes(func(a *SemanticAxes) {
		a.Valence, a.Agency, a.Morality, a.Control, a.Focus = -1, 1, -0.6, 0.2, 0.6
	}),
	TagCampLossAvoidedByPlayer: axes(func(a *SemanticAxes) {
		a.Valence, a.Agency, a.Morality, a.Control, a.Focus = 0.8, 1, 0.7, 0.8, 0.5
	}),

	TagWeatherStormStart: axes(func(a *SemanticAxes) {
		a.Valence, a.Control, a.Novelty, a.Focus = -0.4, 0.3, 0.6, 0
	}),
	TagWeatherStormPeak: axes(func(a *SemanticAxes) {
		a.Valence, a.Control, a.Novelty, a.Focus = -0.7, 0.1, 0.9, 0
	}),
	TagWeatherStormEnd: axes(func(a *SemanticAxes) {
		a.Valence, a.Control, a.Novelty, a.Focus = 0.7, 0.7, 0.6, 0
	}),
	TagMilestoneEarlyGame: neutralAxes,
	TagMilestoneMidGame:   neutralAxes,
	TagMilestoneFinalStorm: axes(func(a *SemanticAxes) {
		a.Valence, a.Novelty, a.Control, a.Focus = -0.6, 0.9, 0.2, 0.3
	}),

	TagMetaLongNoContact: axes(func(a *SemanticAxes) {
		a.Valence, a.Social, a.Focus = -0.4, -0.7, 1
	}),
	TagMetaFrequentCheckIn: axes(func(a *SemanticAxes) {
		a.Valence, a.Social, a.Focus = 0.4, 0.8, 1
	}),
	TagMetaUseResourceForHer: axes(func(a *SemanticAxes) {
		a.Valence, a.Social, a.Morality, a.Focus = 0.5, 0.9, 0.2, 1
	}),
	TagMetaIgnoreHerNeed: neutralAxes,
	TagMetaTalkOnlyWhenNeed: axes(func(a *SemanticAxes) {
		a.Valence, a.Social, a.Focus = -0.2, -0.4, 1
	}),
}

// Classify returns the semantic reading of a tag. Unknown tags read as neutral.
func Classify(tag Tag) SemanticAxes {
	if !tag.Valid() {
		return neutralAxes
	}
	return classifierTable[tag]
}

// ClassifyEvent attaches the semantic reading to a copy of e.
func ClassifyEvent(e RawEvent) ClassifiedEvent {
	return ClassifiedEvent{RawEvent: e, Axes: Classify(e.Tag)}
}
