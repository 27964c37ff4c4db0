package qual

// Standard annual-training catalog. Seeded into the store at startup and
// treated as immutable afterward; records reference these by ID.
//
// Window and cycle choices follow the standard USMC training calendar:
// PFT runs in the first half of the calendar year, CFT in the second,
// range and gas chamber follow the fiscal year.

func md(month, day int) *MonthDay { return &MonthDay{Month: month, Day: day} }

// StandardTypes returns the seeded qualification type catalog.
func StandardTypes() []TypeDefinition {
	return []TypeDefinition{
		{
			ID: "pft", Name: "Physical Fitness Test", Category: CategoryFitness,
			Cycle: CycleCalendarWindow, WindowStart: md(1, 1), WindowEnd: md(6, 30),
			Required: true, TrackScore: true, MinScore: 0, MaxScore: 300,
			ScoreBands: []ScoreBand{
				{Label: "1st Class", Min: 235},
				{Label: "2nd Class", Min: 200},
				{Label: "3rd Class", Min: 150},
			},
		},
		{
			ID: "cft", Name: "Combat Fitness Test", Category: CategoryFitness,
			Cycle: CycleCalendarWindow, WindowStart: md(7, 1), WindowEnd: md(12, 31),
			Required: true, TrackScore: true, MinScore: 0, MaxScore: 300,
			ScoreBands: []ScoreBand{
				{Label: "1st Class", Min: 235},
				{Label: "2nd Class", Min: 200},
				{Label: "3rd Class", Min: 150},
			},
		},
		{
			ID: "rifle", Name: "Rifle Qualification", Category: CategoryWeapons,
			Cycle: CycleFiscalYear,
			Required: true, TrackScore: true, MinScore: 0, MaxScore: 65,
			ScoreBands: []ScoreBand{
				{Label: "Expert", Min: 58},
				{Label: "Sharpshooter", Min: 49},
				{Label: "Marksman", Min: 40},
			},
		},
		{
			ID: "pistol", Name: "Pistol Qualification", Category: CategoryWeapons,
			Cycle: CycleFiscalYear, TrackScore: true, MinScore: 0, MaxScore: 400,
			RequiredRank: "SSgt",
		},
		{
			ID: "gas_chamber", Name: "Gas Chamber", Category: CategoryTraining,
			Cycle: CycleFiscalYear, Required: true,
		},
		{
			ID: "swim", Name: "Swim Qualification", Category: CategoryTraining,
			Cycle: CycleRolling, ExpirationMonths: 36, Required: true,
		},
		{
			ID: "mv_license", Name: "Motor Vehicle License", Category: CategoryLicensing,
			Cycle: CycleRolling, ExpirationMonths: 48, EASAware: true,
		},
		{
			ID: "cpr", Name: "CPR / First Aid", Category: CategoryMedical,
			Cycle: CycleRolling, ExpirationMonths: 24,
		},
		{
			ID: "mcmap", Name: "MCMAP Belt", Category: CategoryTraining,
			Cycle: CycleOneTime,
		},
		{
			ID: "clearance_brief", Name: "Security Clearance Brief", Category: CategoryAdmin,
			Cycle: CycleOneTime,
		},
	}
}
