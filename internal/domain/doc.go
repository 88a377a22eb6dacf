// Package domain models weather-station temperature measurements and the pure
// transformations applied to them before persistence.
//
// # Raw documents
//
// Each source file of a station is read into a [RawMeasurement], a flat
// mapping whose conventional keys are:
//
//	city            free-text city name, any casing ("berlin", "NEW YORK")
//	measured_at_ts  textual or numeric timestamp
//	celsius         temperature in degrees celsius, possibly empty
//	fahrenheit      temperature in degrees fahrenheit, possibly empty
//
// Stations report either celsius or fahrenheit. Markup sources carry both
// branches of the choice, with only one populated.
//
// # Normalization
//
// [Normalize] stamps every record with its station name, title-cases the
// city, coerces the timestamp, and resolves celsius:
//
//	celsius present            keep it
//	celsius empty, fahrenheit  (f - 32) / 1.8, rounded to 2 decimals
//	both empty                 nil; the record is not [Measurement.Complete]
//
// Fahrenheit is an input signal only and never appears in a [Measurement].
//
// Values that cannot be coerced produce a [*ConversionError]; the offending
// record is dropped while the rest of the batch is kept.
package domain
