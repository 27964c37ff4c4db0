/*
Package rank normalizes free-text rank strings to canonical short forms and
provides a total order for roster sorting.

PURPOSE:
  Imported rosters spell ranks every way imaginable: "SGT", "Sergeant",
  "E-5", "Sgt.". Normalize collapses standard abbreviations, full titles,
  and pay-grade codes onto one canonical form; Compare ranks normalized
  values against a fixed precedence list.

GUARANTEES:
  - Normalize never fails: unknown input passes through unchanged
  - Compare is a valid comparator (antisymmetric, transitive)
  - Unknown ranks sort after all known ranks, in both directions
*/
package rank

import "strings"

// Order lists canonical ranks in ascending precedence. Compare indexes into
// this slice; unknown ranks are treated as maximal.
var Order = []string{
	"Pvt", "PFC", "LCpl", "Cpl", "Sgt", "SSgt", "GySgt", "MSgt", "1stSgt", "MGySgt", "SgtMaj",
	"WO", "CWO2", "CWO3", "CWO4", "CWO5",
	"2ndLt", "1stLt", "Capt", "Maj", "LtCol", "Col",
	"BGen", "MajGen", "LtGen", "Gen",
}

// synonyms maps uppercased spellings (abbreviations, full titles, pay
// grades) to canonical short forms. Canonical forms map to themselves so a
// normalized value survives a second pass untouched.
var synonyms = map[string]string{
	// Enlisted
	"PVT": "Pvt", "PRIVATE": "Pvt", "E-1": "Pvt", "E1": "Pvt",
	"PFC": "PFC", "PRIVATE FIRST CLASS": "PFC", "E-2": "PFC", "E2": "PFC",
	"LCPL": "LCpl", "LANCE CORPORAL": "LCpl", "E-3": "LCpl", "E3": "LCpl",
	"CPL": "Cpl", "CORPORAL": "Cpl", "E-4": "Cpl", "E4": "Cpl",
	"SGT": "Sgt", "SERGEANT": "Sgt", "E-5": "Sgt", "E5": "Sgt",
	"SSGT": "SSgt", "STAFF SERGEANT": "SSgt", "E-6": "SSgt", "E6": "SSgt",
	"GYSGT": "GySgt", "GUNNERY SERGEANT": "GySgt", "E-7": "GySgt", "E7": "GySgt",
	"MSGT": "MSgt", "MASTER SERGEANT": "MSgt", "E-8": "MSgt", "E8": "MSgt",
	"1STSGT": "1stSgt", "FIRST SERGEANT": "1stSgt",
	"MGYSGT": "MGySgt", "MASTER GUNNERY SERGEANT": "MGySgt", "E-9": "MGySgt", "E9": "MGySgt",
	"SGTMAJ": "SgtMaj", "SERGEANT MAJOR": "SgtMaj",

	// Warrant
	"WO": "WO", "WO1": "WO", "W-1": "WO", "W1": "WO", "WARRANT OFFICER": "WO",
	"CWO2": "CWO2", "W-2": "CWO2", "W2": "CWO2", "CHIEF WARRANT OFFICER 2": "CWO2",
	"CWO3": "CWO3", "W-3": "CWO3", "W3": "CWO3", "CHIEF WARRANT OFFICER 3": "CWO3",
	"CWO4": "CWO4", "W-4": "CWO4", "W4": "CWO4", "CHIEF WARRANT OFFICER 4": "CWO4",
	"CWO5": "CWO5", "W-5": "CWO5", "W5": "CWO5", "CHIEF WARRANT OFFICER 5": "CWO5",

	// Commissioned
	"2NDLT": "2ndLt", "SECOND LIEUTENANT": "2ndLt", "O-1": "2ndLt", "O1": "2ndLt",
	"1STLT": "1stLt", "FIRST LIEUTENANT": "1stLt", "O-2": "1stLt", "O2": "1stLt",
	"CAPT": "Capt", "CAPTAIN": "Capt", "O-3": "Capt", "O3": "Capt",
	"MAJ": "Maj", "MAJOR": "Maj", "O-4": "Maj", "O4": "Maj",
	"LTCOL": "LtCol", "LIEUTENANT COLONEL": "LtCol", "O-5": "LtCol", "O5": "LtCol",
	"COL": "Col", "COLONEL": "Col", "O-6": "Col", "O6": "Col",
	"BGEN": "BGen", "BRIGADIER GENERAL": "BGen", "O-7": "BGen", "O7": "BGen",
	"MAJGEN": "MajGen", "MAJOR GENERAL": "MajGen", "O-8": "MajGen", "O8": "MajGen",
	"LTGEN": "LtGen", "LIEUTENANT GENERAL": "LtGen", "O-9": "LtGen", "O9": "LtGen",
	"GEN": "Gen", "GENERAL": "Gen", "O-10": "Gen", "O10": "Gen",
}

// orderIndex is built once from Order.
var orderIndex = func() map[string]int {
	idx := make(map[string]int, len(Order))
	for i, r := range Order {
		idx[r] = i
	}
	return idx
}()

// Normalize returns the canonical short form for a rank spelling. Unknown
// input is returned unchanged; Normalize never fails.
func Normalize(raw string) string {
	key := strings.ToUpper(strings.TrimSpace(raw))
	key = strings.TrimSuffix(key, ".")
	if canonical, ok := synonyms[key]; ok {
		return canonical
	}
	return raw
}

// Compare orders two rank strings by precedence: -1 when a ranks below b,
// 1 when above, 0 when equal. Unknown ranks compare as maximal so they sort
// after every known rank; ties between unknowns are left to subsequent sort
// keys such as name.
func Compare(a, b string) int {
	ia := precedence(a)
	ib := precedence(b)
	switch {
	case ia < ib:
		return -1
	case ia > ib:
		return 1
	default:
		return 0
	}
}

func precedence(raw string) int {
	if i, ok := orderIndex[Normalize(raw)]; ok {
		return i
	}
	return len(Order)
}
