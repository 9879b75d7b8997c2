// Package files turns command line inputs into dated table files.
//
// Discovery expands files, directories and glob patterns into the CSV and
// XLSX files to load. ResolveYears tags each file with its calendar year from
// explicit values, the year in its file name or a default.
//
// Example usage:
//
//	discovery := files.NewDiscovery("", logger)
//	found, err := discovery.Expand([]string{"data/", "extra 2025.csv"})
//	if err != nil {
//	    return err
//	}
//	years, err := files.ResolveYears(files.Paths(found), nil, 0)
package files
