package store

var WhereClause = whereClause
