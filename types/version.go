package types

// Version is the canonical project version.
// Journal records and diagnostic log records are stamped with this version.
const Version = "0.1.0"
