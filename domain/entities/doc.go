// Package entities provides the plain data types shared across the bridge:
// structured errors and the description of the export table.
package entities
