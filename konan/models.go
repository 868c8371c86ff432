package konan

// FindModelState returns the state of the model with the given uuid.
func FindModelState(modelUUID string, models []Model) (ModelState, bool) {
	for _, m := range models {
		if m.UUID == modelUUID {
			return m.State, true
		}
	}
	return "", false
}

// FindLiveModel returns the uuid of the deployment's live model, if any.
func FindLiveModel(models []Model) (string, bool) {
	for _, m := range models {
		if m.State == ModelStateLive {
			return m.UUID, true
		}
	}
	return "", false
}
