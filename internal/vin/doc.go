// Package vin turns raw recognized text into canonical Vehicle Identification
// Numbers.
//
// Normalize strips everything outside [A-Za-z0-9], uppercases, truncates to 17
// characters and then removes the letters I, O and Q, which never appear in a
// real VIN. Each removed letter is reported as an ambiguous position, and a
// candidate left with fewer than 17 characters is rejected with an
// IncompleteError instead of being padded or accepted. The package also
// offers manufacturer and model-year inference, the North American check
// digit, and the keystroke filter used for manual entry.
package vin
