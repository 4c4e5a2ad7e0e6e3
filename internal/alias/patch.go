package alias

// Patch is a partial update of an alias. Nil fields are omitted from the
// request body so only changed fields reach the server.
type Patch struct {
	Description     *string `json:"description,omitempty"`
	Enabled         *bool   `json:"enabled,omitempty"`
	BlockListEmails *bool   `json:"block_list_emails,omitempty"`
}

// PatchForDescription builds a patch that only changes the description.
func PatchForDescription(description string) Patch {
	return Patch{Description: &description}
}

// PatchForBlocking builds a patch that sets both underlying booleans of mode.
func PatchForBlocking(mode BlockingMode) Patch {
	enabled, blockList := mode.Flags()
	return Patch{Enabled: &enabled, BlockListEmails: &blockList}
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Description == nil && p.Enabled == nil && p.BlockListEmails == nil
}

// Merge returns p with the non-nil fields of other layered on top.
func (p Patch) Merge(other Patch) Patch {
	if other.Description != nil {
		p.Description = other.Description
	}
	if other.Enabled != nil {
		p.Enabled = other.Enabled
	}
	if other.BlockListEmails != nil {
		p.BlockListEmails = other.BlockListEmails
	}
	return p
}

// Changes reports whether applying p to a would alter any field.
func (p Patch) Changes(a Alias) bool {
	return a.Apply(p) != a
}
