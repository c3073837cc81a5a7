package pricelist

var ParseNumber = parseNumber
