// Package phys holds the physical constants shared by the calculations.
package phys

const (
	// KB is the Boltzmann constant in eV/K.
	KB = 0.000086173303

	// R is the gas constant in J/(mol K).
	R = 8.314

	// P0 is the standard pressure in Pa.
	P0 = 100000.

	// EVPerKJMol converts kJ/mol to eV per particle.
	EVPerKJMol = 0.0103643
)
