package wallet

import "github.com/xraph/wallet/id"

// ID is the primary identifier type for all wallet records.
type ID = id.ID

// Prefix identifies the record type encoded in a TypeID.
type Prefix = id.Prefix
