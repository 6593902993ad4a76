package models

// ResourceType identifies a class of remote records mirrored locally.
// Each type has its own keyed collection in the local store.
type ResourceType string

const (
	ResourceAccounts     ResourceType = "accounts"
	ResourceTransactions ResourceType = "transactions"
	ResourceGoals        ResourceType = "goals"
	ResourceBills        ResourceType = "bills"
	ResourceCards        ResourceType = "cards"
	ResourceContacts     ResourceType = "contacts"
)

// ResourceTypes lists every synchronized resource type.
// Accounts go first: other types link to them.
var ResourceTypes = []ResourceType{
	ResourceAccounts,
	ResourceTransactions,
	ResourceGoals,
	ResourceBills,
	ResourceCards,
	ResourceContacts,
}

// ParseResourceType returns the resource type with the given name.
func ParseResourceType(name string) (ResourceType, bool) {
	for _, rt := range ResourceTypes {
		if string(rt) == name {
			return rt, true
		}
	}
	return "", false
}

// String implements fmt.Stringer.
func (rt ResourceType) String() string {
	return string(rt)
}
