package ir

// ValueID indexes a function's value table.
type ValueID uint32

// FuncID indexes a module's function list.
type FuncID uint32
