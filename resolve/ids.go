package resolve

// CrateID opaquely identifies a crate. Equality defines crate identity.
//
// Grounded on spec §3 "Crate identifier". The teacher's closest analog is
// gps.ProjectRoot, a string identity; here identity is a small integer so
// that ModPath, which embeds a CrateID in every comparison, stays cheap to
// compare and hash.
type CrateID int32

// ModuleID indexes a ModData within the arena of its owning CrateDefMap.
// Stable for the lifetime of the map; never reused across crates.
//
// Per spec §9 "Cyclic ownership": ModData nodes are arena-owned and refer
// to each other (parent, children) by index, not by pointer, so the tree
// has no reference cycles and two ModuleIDs can be compared directly.
type ModuleID int32

// RootModule is the ModuleID of every crate's root module.
const RootModule ModuleID = 0
