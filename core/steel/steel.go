package steel

// Technology identifies one of the steelmaking technology archetypes.
type Technology string

const (
	AvgBFBOF         Technology = "Avg BF-BOF"
	BATBFBOF         Technology = "BAT BF-BOF"
	BATBFBOFBioPCI   Technology = "BAT BF-BOF_bio PCI"
	BATBFBOFH2PCI    Technology = "BAT BF-BOF_H2 PCI"
	BATBFBOFCCUS     Technology = "BAT BF-BOF+CCUS"
	BATBFBOFBECCUS   Technology = "BAT BF-BOF+BECCUS"
	BATBFBOFCCU      Technology = "BAT BF-BOF+CCU"
	DRIMeltBOF       Technology = "DRI-Melt-BOF"
	DRIMeltBOFZeroCH Technology = "DRI-Melt-BOF_100% zero-C H2"
	DRIMeltBOFCCUS   Technology = "DRI-Melt-BOF+CCUS"
	DRIEAF           Technology = "DRI-EAF"
	DRIEAFBioCH4     Technology = "DRI-EAF_50% bio-CH4"
	DRIEAFGreenH2    Technology = "DRI-EAF_50% green H2"
	DRIEAFCCUS       Technology = "DRI-EAF+CCUS"
	DRIEAFFullH2     Technology = "DRI-EAF_100% green H2"
	SmeltingRed      Technology = "Smelting Reduction"
	SmeltingRedCCUS  Technology = "Smelting Reduction+CCUS"
	EAF              Technology = "EAF"
	ElectrolyzerEAF  Technology = "Electrolyzer-EAF"
	ElectrowinEAF    Technology = "Electrowinning-EAF"

	// CloseTechnology marks a plant slated for closure in choice output.
	CloseTechnology Technology = "Close plant"
)

// Phase groups technologies by decarbonization maturity.
type Phase string

const (
	PhaseInitial      Phase = "initial"
	PhaseTransitional Phase = "transitional"
	PhaseEndState     Phase = "end_state"
)

// FurnaceGroup identifies the shared production hardware family.
type FurnaceGroup string

const (
	GroupBlastFurnace FurnaceGroup = "blast_furnace"
	GroupDRIBOF       FurnaceGroup = "dri-bof"
	GroupDRIEAF       FurnaceGroup = "dri-eaf"
	GroupSmelting     FurnaceGroup = "smelting_reduction"
	GroupEAFBasic     FurnaceGroup = "eaf-basic"
	GroupEAFAdvanced  FurnaceGroup = "eaf-advanced"
)

// Resource identifies a globally (or regionally) constrained resource.
type Resource string

const (
	ResourceScrap   Resource = "scrap"
	ResourceBiomass Resource = "biomass"
	ResourceCCS     Resource = "ccs"
	ResourceCO2Use  Resource = "co2"
)

// Material identifies an input/output material tracked per technology.
type Material string

const (
	MaterialScrap       Material = "Scrap"
	MaterialBiomass     Material = "Biomass"
	MaterialBiomethane  Material = "Biomethane"
	MaterialCapturedCO2 Material = "Captured CO2"
	MaterialUsedCO2     Material = "Used CO2"
)

// Resources lists all constrained resources.
var Resources = []Resource{ResourceScrap, ResourceBiomass, ResourceCCS, ResourceCO2Use}

// ResourceMaterials maps each constrained resource to the materials that
// draw against it.
var ResourceMaterials = map[Resource][]Material{
	ResourceScrap:   {MaterialScrap},
	ResourceBiomass: {MaterialBiomass, MaterialBiomethane},
	ResourceCCS:     {MaterialCapturedCO2},
	ResourceCO2Use:  {MaterialUsedCO2},
}

// All lists every technology archetype a plant can run.
var All = []Technology{
	AvgBFBOF, BATBFBOF, BATBFBOFBioPCI, BATBFBOFH2PCI, BATBFBOFCCUS,
	BATBFBOFBECCUS, BATBFBOFCCU,
	DRIMeltBOF, DRIMeltBOFZeroCH, DRIMeltBOFCCUS,
	DRIEAF, DRIEAFBioCH4, DRIEAFGreenH2, DRIEAFCCUS, DRIEAFFullH2,
	SmeltingRed, SmeltingRedCCUS,
	EAF, ElectrolyzerEAF, ElectrowinEAF,
}

// FurnaceGroups maps each group to its member technologies.
var FurnaceGroups = map[FurnaceGroup][]Technology{
	GroupBlastFurnace: {
		AvgBFBOF, BATBFBOF, BATBFBOFBioPCI, BATBFBOFH2PCI,
		BATBFBOFCCUS, BATBFBOFBECCUS, BATBFBOFCCU,
	},
	GroupDRIBOF:      {DRIMeltBOF, DRIMeltBOFZeroCH, DRIMeltBOFCCUS},
	GroupDRIEAF:      {DRIEAF, DRIEAFBioCH4, DRIEAFGreenH2, DRIEAFCCUS, DRIEAFFullH2},
	GroupSmelting:    {SmeltingRed, SmeltingRedCCUS},
	GroupEAFBasic:    {EAF},
	GroupEAFAdvanced: {ElectrolyzerEAF, ElectrowinEAF},
}

// Phases maps each phase to its member technologies.
var Phases = map[Phase][]Technology{
	PhaseInitial: {AvgBFBOF},
	PhaseTransitional: {
		BATBFBOF, BATBFBOFBioPCI, BATBFBOFH2PCI,
		DRIEAF, DRIEAFBioCH4, DRIEAFGreenH2, SmeltingRed, DRIMeltBOF,
	},
	PhaseEndState: {
		BATBFBOFCCUS, DRIEAFFullH2, DRIEAFCCUS, EAF, BATBFBOFCCU,
		BATBFBOFBECCUS, ElectrolyzerEAF, SmeltingRedCCUS, DRIMeltBOFCCUS,
		DRIMeltBOFZeroCH, ElectrowinEAF,
	},
}

// SwitchTargets is the directed allow-list of technology switches. A plant
// running the key technology may only move to one of the listed targets
// (staying put is always listed first).
var SwitchTargets = map[Technology][]Technology{
	AvgBFBOF: {
		AvgBFBOF, BATBFBOF, BATBFBOFBioPCI, BATBFBOFH2PCI, BATBFBOFCCUS,
		BATBFBOFBECCUS, BATBFBOFCCU, DRIMeltBOF, DRIMeltBOFZeroCH,
		DRIMeltBOFCCUS, DRIEAF, DRIEAFBioCH4, DRIEAFGreenH2, DRIEAFCCUS,
		DRIEAFFullH2, SmeltingRed, SmeltingRedCCUS, EAF, ElectrolyzerEAF,
		ElectrowinEAF,
	},
	BATBFBOF: {
		BATBFBOF, BATBFBOFBioPCI, BATBFBOFH2PCI, BATBFBOFCCUS,
		BATBFBOFBECCUS, BATBFBOFCCU, DRIMeltBOF, DRIMeltBOFZeroCH,
		DRIMeltBOFCCUS, DRIEAF, DRIEAFBioCH4, DRIEAFGreenH2, DRIEAFCCUS,
		DRIEAFFullH2, SmeltingRed, SmeltingRedCCUS, EAF, ElectrolyzerEAF,
		ElectrowinEAF,
	},
	BATBFBOFBioPCI: {
		BATBFBOFBioPCI, BATBFBOFCCUS, BATBFBOFBECCUS, BATBFBOFCCU,
		DRIMeltBOFZeroCH, DRIMeltBOFCCUS, DRIEAFCCUS, DRIEAFFullH2,
		SmeltingRedCCUS, EAF, ElectrolyzerEAF, ElectrowinEAF,
	},
	BATBFBOFH2PCI: {
		BATBFBOFH2PCI, BATBFBOFCCUS, BATBFBOFBECCUS, BATBFBOFCCU,
		DRIMeltBOFZeroCH, DRIMeltBOFCCUS, DRIEAFCCUS, DRIEAFFullH2,
		SmeltingRedCCUS, EAF, ElectrolyzerEAF, ElectrowinEAF,
	},
	DRIMeltBOF: {DRIMeltBOF, DRIMeltBOFZeroCH, DRIMeltBOFCCUS},
	DRIEAF: {
		DRIEAF, DRIEAFBioCH4, DRIEAFGreenH2, DRIEAFCCUS, DRIEAFFullH2,
		SmeltingRed, SmeltingRedCCUS, ElectrolyzerEAF, ElectrowinEAF,
	},
	DRIEAFBioCH4: {
		DRIEAFBioCH4, SmeltingRedCCUS, ElectrolyzerEAF, DRIEAFCCUS, DRIEAFFullH2,
	},
	DRIEAFGreenH2: {
		DRIEAFGreenH2, SmeltingRedCCUS, ElectrolyzerEAF, DRIEAFCCUS, DRIEAFFullH2,
	},
	SmeltingRed:      {SmeltingRed, SmeltingRedCCUS},
	BATBFBOFCCUS:     {BATBFBOFCCUS},
	BATBFBOFBECCUS:   {BATBFBOFBECCUS},
	BATBFBOFCCU:      {BATBFBOFCCU},
	DRIMeltBOFZeroCH: {DRIMeltBOFZeroCH},
	DRIMeltBOFCCUS:   {DRIMeltBOFCCUS},
	DRIEAFCCUS:       {DRIEAFCCUS},
	DRIEAFFullH2:     {DRIEAFFullH2},
	SmeltingRedCCUS:  {SmeltingRedCCUS},
	EAF:              {EAF},
	ElectrolyzerEAF:  {ElectrolyzerEAF},
	ElectrowinEAF:    {ElectrowinEAF},
}

// GroupOf returns the furnace group a technology belongs to.
func GroupOf(tech Technology) (FurnaceGroup, bool) {
	for group, members := range FurnaceGroups {
		for _, t := range members {
			if t == tech {
				return group, true
			}
		}
	}
	return "", false
}

// PhaseOf returns the decarbonization phase of a technology.
func PhaseOf(tech Technology) (Phase, bool) {
	for phase, members := range Phases {
		for _, t := range members {
			if t == tech {
				return phase, true
			}
		}
	}
	return "", false
}

// SwitchAllowed reports whether base may switch to target.
func SwitchAllowed(base, target Technology) bool {
	for _, t := range SwitchTargets[base] {
		if t == target {
			return true
		}
	}
	return false
}

// SameGroup reports whether both technologies share a furnace group.
func SameGroup(a, b Technology) bool {
	ga, ok := GroupOf(a)
	if !ok {
		return false
	}
	gb, ok := GroupOf(b)
	if !ok {
		return false
	}
	return ga == gb
}

// IsEndState reports whether the technology is an end-state archetype.
func IsEndState(tech Technology) bool {
	p, ok := PhaseOf(tech)
	return ok && p == PhaseEndState
}
