package document

var UnregisterUnit = unregisterUnit
