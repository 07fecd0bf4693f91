// Package material stages and publishes material functions and materials.
package material
