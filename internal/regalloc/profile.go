package regalloc

import (
	"encoding/json"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// supportedProfileSchema is the range of register-profile schema versions
// this build understands; bumped whenever Profile gains or loses a field
// in a way callers must know about.
var supportedProfileSchema = mustConstraint("^1.0.0")

func mustConstraint(s string) *semver.Constraints {
	c, err := semver.NewConstraint(s)
	if err != nil {
		panic(err)
	}

	return c
}

// ConflictEntry is one cross-class conflict edge in a register profile.
type ConflictEntry struct {
	ClassA uint32 `json:"class_a"`
	RegA   uint32 `json:"reg_a"`
	ClassB uint32 `json:"class_b"`
	RegB   uint32 `json:"reg_b"`
}

// ClassEntry describes one register class's physical register count.
type ClassEntry struct {
	ID            uint32 `json:"id"`
	PhysicalCount uint32 `json:"physical_count"`
}

// Profile is the JSON-configured description of a target ISA's register
// file: enough to drive AllocateRegisterSet/AddRegisters/
// AddRegisterConflict without the CLI hardcoding any ISA's layout.
type Profile struct {
	SchemaVersion string          `json:"schema_version"`
	Name          string          `json:"name"`
	Classes       []ClassEntry    `json:"classes"`
	Conflicts     []ConflictEntry `json:"conflicts"`
}

// ParseProfile decodes and schema-validates a register profile.
func ParseProfile(data []byte) (*Profile, error) {
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse register profile: %w", err)
	}

	v, err := semver.NewVersion(p.SchemaVersion)
	if err != nil {
		return nil, fmt.Errorf("register profile %q: invalid schema_version %q: %w", p.Name, p.SchemaVersion, err)
	}

	if !supportedProfileSchema.Check(v) {
		return nil, fmt.Errorf("register profile %q: schema_version %s not in supported range %s",
			p.Name, p.SchemaVersion, supportedProfileSchema)
	}

	return &p, nil
}

// Configure applies the profile to a freshly constructed Allocator.
func (p *Profile) Configure(a *Allocator) {
	var maxClass uint32

	for _, c := range p.Classes {
		if c.ID > maxClass {
			maxClass = c.ID
		}
	}

	a.AllocateRegisterSet(0, maxClass+1)

	for _, c := range p.Classes {
		a.AddRegisters(c.ID, c.PhysicalCount)
	}

	reserved := map[uint32]uint32{}

	for _, conflict := range p.Conflicts {
		if conflict.RegA+1 > reserved[conflict.ClassA] {
			a.AllocateRegisterConflicts(conflict.ClassA, conflict.RegA+1)
			reserved[conflict.ClassA] = conflict.RegA + 1
		}

		if conflict.RegB+1 > reserved[conflict.ClassB] {
			a.AllocateRegisterConflicts(conflict.ClassB, conflict.RegB+1)
			reserved[conflict.ClassB] = conflict.RegB + 1
		}

		a.AddRegisterConflict(conflict.ClassA, conflict.RegA, conflict.ClassB, conflict.RegB)
	}
}
