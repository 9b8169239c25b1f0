package api

// BoardTrain is the subset of a partenze/arrivi entry needed to identify a
// train run. The triple (NumeroTreno, CodOrigine, DataPartenzaTreno) is the
// unique key for all train-specific endpoints: a train number alone recurs
// across days and occasionally across simultaneous services.
type BoardTrain struct {
	NumeroTreno       int    `json:"numeroTreno"`
	CodOrigine        string `json:"codOrigine"`
	DataPartenzaTreno int64  `json:"dataPartenzaTreno"`
	CompNumeroTreno   string `json:"compNumeroTreno"`
	Categoria         string `json:"categoria"`
	Origine           string `json:"origine"`
	Destinazione      string `json:"destinazione"`
	OrarioPartenza    int64  `json:"orarioPartenza"`
	OrarioArrivo      int64  `json:"orarioArrivo"`
}

// TrainStatus is the subset of an andamentoTreno response used for display
// and calendar export.
type TrainStatus struct {
	NumeroTreno     int         `json:"numeroTreno"`
	CompNumeroTreno string      `json:"compNumeroTreno"`
	Categoria       string      `json:"categoria"`
	Origine         string      `json:"origine"`
	Destinazione    string      `json:"destinazione"`
	Fermate         []TrainStop `json:"fermate"`
}

// TrainStop is one scheduled stop of a train run. Times are epoch
// milliseconds; zero means "not available".
type TrainStop struct {
	Stazione        string `json:"stazione"`
	ID              string `json:"id"`
	Programmata     int64  `json:"programmata"`
	PartenzaTeorica int64  `json:"partenza_teorica"`
	ArrivoTeorico   int64  `json:"arrivo_teorico"`
	PartenzaReale   int64  `json:"partenzaReale"`
	ArrivoReale     int64  `json:"arrivoReale"`
}
