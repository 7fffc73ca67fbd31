// Package location holds the data model shared by the engine: positions, time
// bounds, the closed error taxonomy and the Source capability that a location
// backend implements.
package location
