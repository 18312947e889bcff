package pages

// catalogue lists every page in menu order.
func catalogue(s Settings) []Page {
	return []Page{
		employabilityPeriod(),
		occupationCohortPeriod(),
		employabilityCohort(),
		unemploymentRisk(),
		salaryDistribution(),
		sectors(),
		companySize(),
		firstJob(),
		formalTransitions(),
		jobDuration(),
		rotation(),
		sectorMobility(),
		programRanking(),
		criticalPrograms(s),
		saturation(),
		employers(),
		jobTitles(),
		postgradContinuity(),
		postgradPrograms(),
		postgradOrigin(),
	}
}
