// Package dataset reads and writes the tabular inputs and outputs of agedcare-docs.
//
// The government service list and the star-ratings extract are Excel workbooks read with
// excelize; provider lists and results are CSV files. Helpers here also filter services
// by care type and derive the unique provider and location lists the other commands use.
package dataset
