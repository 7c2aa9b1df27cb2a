package storage

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/md-rashed-zaman/frontdesk/services/frontdesk-service/internal/model"
)

// DefaultSeedRooms is used by the in-memory store when SEED_ROOMS is empty.
const DefaultSeedRooms = "101/single/1/1,102/double/1/2,103/double/1/2,201/double/2/2,202/suite/2/4,301/suite/3/4"

// ParseSeedRooms reads a comma separated list of number/type/floor/capacity
// entries. Room ids are "room-<number>".
func ParseSeedRooms(raw string) ([]model.Room, error) {
	var rooms []model.Room
	seen := map[string]bool{}
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, "/")
		if len(parts) != 4 {
			return nil, fmt.Errorf("seed room %q: want number/type/floor/capacity", entry)
		}
		number := strings.TrimSpace(parts[0])
		if number == "" || seen[number] {
			return nil, fmt.Errorf("seed room %q: missing or duplicate number", entry)
		}
		floor, err := strconv.Atoi(strings.TrimSpace(parts[2]))
		if err != nil || floor < 0 {
			return nil, fmt.Errorf("seed room %q: floor must be an integer >= 0", entry)
		}
		capacity, err := strconv.Atoi(strings.TrimSpace(parts[3]))
		if err != nil || capacity < 1 {
			return nil, fmt.Errorf("seed room %q: capacity must be an integer >= 1", entry)
		}
		seen[number] = true
		rooms = append(rooms, model.Room{
			ID:           "room-" + number,
			Number:       number,
			Type:         strings.TrimSpace(parts[1]),
			Floor:        floor,
			Capacity:     capacity,
			Status:       model.RoomAvailable,
			Housekeeping: model.HousekeepingClean,
		})
	}
	return rooms, nil
}
