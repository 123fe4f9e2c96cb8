// Package compliance downloads provider compliance reports from the aged-care regulator.
//
// A provider location is looked up on the regulator's "service and reports" search page.
// The first service result is opened and the first Word document linked from it is saved
// under the compliance download directory.
package compliance
