package enums

// Unit condition is free-form text on the unit row. These are the values the
// system writes itself; callers may supply anything.
const (
	UnitConditionNew     = "NEW"
	UnitConditionUsed    = "USED"
	UnitConditionDamaged = "DAMAGED"
)
