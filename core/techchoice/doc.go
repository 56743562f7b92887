// Package techchoice picks the best switch technology for a plant at a
// decision point. Candidates come from the switch allow-list, narrowed by
// furnace group for off-cycle switches and by technology availability, then
// scored on cost and emissions abatement under either a ranked or a scaled
// solver. Resource constraints gate the final choice when enforcement is on.
package techchoice
