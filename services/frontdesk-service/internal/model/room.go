package model

// RoomStatus is the coarse operational flag maintained by housekeeping and
// maintenance. It does not describe date-range occupancy.
type RoomStatus string

const (
	RoomAvailable     RoomStatus = "available"
	RoomOccupied      RoomStatus = "occupied"
	RoomMaintenance   RoomStatus = "maintenance"
	RoomCleaning      RoomStatus = "cleaning"
	RoomOutOfOrder    RoomStatus = "out-of-order"
	RoomHouseUse      RoomStatus = "house-use"
	RoomComplimentary RoomStatus = "complimentary"
)

func (s RoomStatus) Valid() bool {
	switch s {
	case RoomAvailable, RoomOccupied, RoomMaintenance, RoomCleaning, RoomOutOfOrder, RoomHouseUse, RoomComplimentary:
		return true
	}
	return false
}

// OutOfService reports whether the room should not be offered to walk-ins
// regardless of its bookings.
func (s RoomStatus) OutOfService() bool {
	return s == RoomMaintenance || s == RoomOutOfOrder
}

type HousekeepingStatus string

const (
	HousekeepingClean     HousekeepingStatus = "clean"
	HousekeepingDirty     HousekeepingStatus = "dirty"
	HousekeepingInspected HousekeepingStatus = "inspected"
)

type Room struct {
	ID           string
	Number       string
	Type         string
	Floor        int
	Capacity     int
	Status       RoomStatus
	Housekeeping HousekeepingStatus
}
