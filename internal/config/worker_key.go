package config

type WorkerKeyStruct struct {
	PersistFinalScoresQueue string
}

var WorkerKey = &WorkerKeyStruct{
	PersistFinalScoresQueue: "persist_final_scores_queue",
}
