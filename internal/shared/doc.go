// Package shared holds code used across the internal packages that belongs
// to no single layer.
//
// # Test Utilities
//
// The testutil subpackage provides:
//
//	- A buffered slog handler with assertions on captured records
//	- Wide passenger-table fixtures (Indonesian month header, rows, ramps)
//	- A helper that writes CSV fixtures, optionally with a byte order mark
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    logger, handler := testutil.NewTestLogger(t)
//	    path := testutil.WriteCSVTable(t, t.TempDir(), "kai_2024.csv", true,
//	        testutil.IndonesianHeader, testutil.WideRow("Lokal", 10, 11))
//
//	    // run code under test with logger and path
//	    testutil.AssertNoErrors(t, handler)
//	}
package shared
