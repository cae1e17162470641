package config

type WorkerKeyStruct struct {
	StarSettleQueue string
}

var WorkerKey = &WorkerKeyStruct{
	StarSettleQueue: "star_settle_queue",
}
