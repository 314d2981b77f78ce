package model

// SpotType selects a pre-filled definition template when creating a spot.
type SpotType string

// Spot type constants.
const (
	SpotWork     SpotType = "work"
	SpotChill    SpotType = "chill"
	SpotSleep    SpotType = "sleep"
	SpotKitchen  SpotType = "kitchen"
	SpotEntryway SpotType = "entryway"
	SpotStorage  SpotType = "storage"
	SpotCustom   SpotType = "custom"
)

// SpotTypes lists every template in display order.
var SpotTypes = []SpotType{
	SpotWork, SpotChill, SpotSleep, SpotKitchen, SpotEntryway, SpotStorage, SpotCustom,
}

// Valid reports whether the type is known.
func (t SpotType) Valid() bool {
	switch t {
	case SpotWork, SpotChill, SpotSleep, SpotKitchen, SpotEntryway, SpotStorage, SpotCustom:
		return true
	}
	return false
}

// Label returns the display label for the type.
func (t SpotType) Label() string {
	switch t {
	case SpotWork:
		return "Work / Focus Desk"
	case SpotChill:
		return "Chill / Relaxing Area"
	case SpotSleep:
		return "Sleep Zone"
	case SpotKitchen:
		return "Cooking / Kitchen"
	case SpotEntryway:
		return "Entryway / Hallway"
	case SpotStorage:
		return "Storage Area"
	case SpotCustom:
		return "Something else"
	}
	return string(t)
}

// Template returns the starter ready-state definition for the type.
func (t SpotType) Template() string {
	switch t {
	case SpotWork:
		return `This is my work area. I need a clear surface to focus.

Things that should be here:
- Laptop/monitor
- Notebook and pen
- Water bottle

Things that shouldn't be here:
- Dirty dishes or cups
- Random papers or mail
- Clothes`
	case SpotChill:
		return `This is where I relax. Should feel calm and uncluttered.

Things that are fine here:
- Remote controls in their spot
- A book or two
- Throw blanket folded

Things that shouldn't pile up:
- Empty glasses or plates
- Random stuff from pockets
- Laundry`
	case SpotSleep:
		return `This is my sleep space. Should be calm and ready for rest.

Ready state:
- Bed made (or at least neat)
- Nightstand clear except lamp/phone charger
- No clothes on floor
- Blinds/curtains in position`
	case SpotKitchen:
		return `This is my kitchen area. Should be clear and ready to use.

Ready state:
- Counters wiped and clear
- Dishes washed or in dishwasher
- No food left out
- Sink empty`
	case SpotEntryway:
		return `This is my entryway. First thing I see coming home.

Ready state:
- Shoes in rack or lined up
- Keys/wallet in their spot
- No bags dumped on floor
- Coat hung up`
	case SpotStorage:
		return `This is a storage area. Things should be organised.

What belongs here:
- [List your items]

Signs it needs sorting:
- Things not in their containers
- Items blocking access
- Stuff that doesn't belong here`
	case SpotCustom:
		return `Describe this spot in your own words.

What is it for?

What should it look like when ready?

What are signs it needs attention?`
	}
	return ""
}
