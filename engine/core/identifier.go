package core

import "fmt"

var Owners []interface{}

// Hands out the first free slot index, registering the owner in it.
func IdentifierAquireNewID(owner interface{}) uint32 {
	if len(Owners) == 0 {
		Owners = make([]interface{}, 100)
	}
	length := uint32(len(Owners))
	for i := uint32(0); i < length; i++ {
		// Existing free spot. Take it.
		if Owners[i] == nil {
			Owners[i] = owner
			return i
		}
	}

	// No free slots, push a new one. The id is then length - 1.
	Owners = append(Owners, owner)
	length = uint32(len(Owners))
	return length - 1
}

func IdentifierReleaseID(id uint32) error {
	if len(Owners) == 0 {
		return fmt.Errorf("identifier release called before any id was acquired. Nothing was done")
	}

	length := uint32(len(Owners))
	if id >= length {
		return fmt.Errorf("identifier release: id '%d' out of range (max=%d). Nothing was done", id, length)
	}

	// Just zero out the entry, making it available for use.
	Owners[id] = nil
	return nil
}
