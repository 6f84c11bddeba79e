package model

// RecentData is the last-24-hours telemetry snapshot of a pump and its
// sensor, returned by the connect data or BLE periodic data endpoints.
type RecentData struct {
	LastSensorTS                          int64                  `json:"lastSensorTS,omitempty"`
	MedicalDeviceTimeAsString             string                 `json:"medicalDeviceTimeAsString,omitempty"`
	LastSensorTSAsString                  string                 `json:"lastSensorTSAsString,omitempty"`
	DataKind                              string                 `json:"kind,omitempty"`
	Version                               int                    `json:"version"`
	PumpModelNumber                       string                 `json:"pumpModelNumber,omitempty"`
	CurrentServerTime                     int64                  `json:"currentServerTime,omitempty"`
	LastConduitTime                       int64                  `json:"lastConduitTime,omitempty"`
	LastConduitUpdateServerTime           int64                  `json:"lastConduitUpdateServerTime,omitempty"`
	LastMedicalDeviceDataUpdateServerTime int64                  `json:"lastMedicalDeviceDataUpdateServerTime,omitempty"`
	FirstName                             string                 `json:"firstName,omitempty"`
	LastName                              string                 `json:"lastName,omitempty"`
	ConduitSerialNumber                   string                 `json:"conduitSerialNumber,omitempty"`
	ConduitBatteryLevel                   int                    `json:"conduitBatteryLevel"`
	ConduitBatteryStatus                  string                 `json:"conduitBatteryStatus,omitempty"`
	ConduitInRange                        bool                   `json:"conduitInRange"`
	ConduitMedicalDeviceInRange           bool                   `json:"conduitMedicalDeviceInRange"`
	ConduitSensorInRange                  bool                   `json:"conduitSensorInRange"`
	MedicalDeviceFamily                   string                 `json:"medicalDeviceFamily,omitempty"`
	SensorState                           string                 `json:"sensorState,omitempty"`
	MedicalDeviceSerialNumber             string                 `json:"medicalDeviceSerialNumber,omitempty"`
	MedicalDeviceTime                     *Time                  `json:"medicalDeviceTime,omitempty"`
	SMedicalDeviceTime                    *Time                  `json:"sMedicalDeviceTime,omitempty"`
	ReservoirLevelPercent                 int                    `json:"reservoirLevelPercent"`
	ReservoirAmount                       int                    `json:"reservoirAmount"`
	ReservoirRemainingUnits               float64                `json:"reservoirRemainingUnits"`
	MedicalDeviceBatteryLevelPercent      int                    `json:"medicalDeviceBatteryLevelPercent"`
	SensorDurationHours                   int                    `json:"sensorDurationHours"`
	TimeToNextCalibHours                  int                    `json:"timeToNextCalibHours"`
	CalibStatus                           string                 `json:"calibStatus,omitempty"`
	BGUnits                               string                 `json:"bgUnits,omitempty"`
	TimeFormat                            string                 `json:"timeFormat,omitempty"`
	LastSensorTime                        *Time                  `json:"lastSensorTime,omitempty"`
	SLastSensorTime                       *Time                  `json:"sLastSensorTime,omitempty"`
	MedicalDeviceSuspended                bool                   `json:"medicalDeviceSuspended"`
	LastSGTrend                           string                 `json:"lastSGTrend,omitempty"`
	LastSG                                *SensorGlucose         `json:"lastSG,omitempty"`
	LastAlarm                             *Alarm                 `json:"lastAlarm,omitempty"`
	ActiveInsulin                         *ActiveInsulin         `json:"activeInsulin,omitempty"`
	SGs                                   []SensorGlucose        `json:"sgs,omitempty"`
	Limits                                []Limit                `json:"limits,omitempty"`
	Markers                               []Marker               `json:"markers,omitempty"`
	PumpBannerState                       []PumpBannerState      `json:"pumpBannerState,omitempty"`
	TherapyAlgorithmState                 *TherapyAlgorithmState `json:"therapyAlgorithmState,omitempty"`
	SystemStatusMessage                   string                 `json:"systemStatusMessage,omitempty"`
	AverageSG                             int                    `json:"averageSG"`
	BelowHypoLimit                        int                    `json:"belowHypoLimit"`
	AboveHyperLimit                       int                    `json:"aboveHyperLimit"`
	TimeInRange                           int                    `json:"timeInRange"`
	PumpCommunicationState                bool                   `json:"pumpCommunicationState"`
	GSTCommunicationState                 bool                   `json:"gstCommunicationState"`
	GSTBatteryLevel                       int                    `json:"gstBatteryLevel"`
	LastConduitDateTime                   *Time                  `json:"lastConduitDateTime,omitempty"`
	MaxAutoBasalRate                      float64                `json:"maxAutoBasalRate"`
	MaxBolusAmount                        float64                `json:"maxBolusAmount"`
	SensorDurationMinutes                 int                    `json:"sensorDurationMinutes"`
	TimeToNextCalibrationMinutes          int                    `json:"timeToNextCalibrationMinutes"`
	ClientTimeZoneName                    string                 `json:"clientTimeZoneName,omitempty"`
	SGBelowLimit                          int                    `json:"sgBelowLimit"`
	AverageSGFloat                        float64                `json:"averageSGFloat"`
	CalFreeSensor                         bool                   `json:"calFreeSensor"`
	FinalCalibration                      bool                   `json:"finalCalibration"`
}

// SensorGlucose is one sensor glucose reading.
type SensorGlucose struct {
	SG             int    `json:"sg"`
	Datetime       *Time  `json:"datetime,omitempty"`
	TimeChange     bool   `json:"timeChange"`
	SensorState    string `json:"sensorState,omitempty"`
	Kind           string `json:"kind,omitempty"`
	Version        int    `json:"version"`
	RelativeOffset int    `json:"relativeOffset"`
}

// Marker is a therapy event such as a bolus, meal, calibration or auto
// basal delivery. The populated fields depend on Type.
type Marker struct {
	Type                     string   `json:"type,omitempty"`
	Index                    int      `json:"index"`
	Kind                     string   `json:"kind,omitempty"`
	Version                  int      `json:"version"`
	DateTime                 *Time    `json:"dateTime,omitempty"`
	RelativeOffset           int      `json:"relativeOffset"`
	Amount                   *float64 `json:"amount,omitempty"`
	BolusAmount              *float64 `json:"bolusAmount,omitempty"`
	ProgrammedExtendedAmount *float64 `json:"programmedExtendedAmount,omitempty"`
	ProgrammedFastAmount     *float64 `json:"programmedFastAmount,omitempty"`
	ProgrammedDuration       *int     `json:"programmedDuration,omitempty"`
	DeliveredExtendedAmount  *float64 `json:"deliveredExtendedAmount,omitempty"`
	DeliveredFastAmount      *float64 `json:"deliveredFastAmount,omitempty"`
	EffectiveDuration        *int     `json:"effectiveDuration,omitempty"`
	ActivationType           string   `json:"activationType,omitempty"`
	BolusType                string   `json:"bolusType,omitempty"`
	Completed                *bool    `json:"completed,omitempty"`
	Value                    *float64 `json:"value,omitempty"`
}

// Limit is a glucose limit band for a time range.
type Limit struct {
	Index     int    `json:"index"`
	Kind      string `json:"kind,omitempty"`
	Version   int    `json:"version"`
	LowLimit  int    `json:"lowLimit"`
	HighLimit int    `json:"highLimit"`
}

// Alarm is the last alarm raised by the pump.
type Alarm struct {
	Code                     int    `json:"code"`
	Datetime                 *Time  `json:"datetime,omitempty"`
	Type                     string `json:"type,omitempty"`
	Flash                    bool   `json:"flash"`
	Kind                     string `json:"kind,omitempty"`
	Version                  int    `json:"version"`
	InstanceID               int    `json:"instanceId"`
	MessageID                string `json:"messageId,omitempty"`
	SG                       int    `json:"sg"`
	PumpDeliverySuspendState bool   `json:"pumpDeliverySuspendState"`
	ReferenceGUID            string `json:"referenceGUID,omitempty"`
}

// ActiveInsulin is the insulin on board.
type ActiveInsulin struct {
	Code      *int     `json:"code,omitempty"`
	Datetime  *Time    `json:"datetime,omitempty"`
	Version   int      `json:"version"`
	Amount    *float64 `json:"amount,omitempty"`
	Precision string   `json:"precision,omitempty"`
	Kind      string   `json:"kind,omitempty"`
}

// PumpBannerState is a banner shown on the pump, e.g. a temp target.
type PumpBannerState struct {
	Type          string `json:"type,omitempty"`
	TimeRemaining int    `json:"timeRemaining"`
}

// TherapyAlgorithmState is the SmartGuard state of 780G pumps.
type TherapyAlgorithmState struct {
	AutoModeShieldState     string `json:"autoModeShieldState,omitempty"`
	AutoModeReadinessState  string `json:"autoModeReadinessState,omitempty"`
	PlgmLgsState            string `json:"plgmLgsState,omitempty"`
	SafeBasalDuration       int    `json:"safeBasalDuration"`
	WaitToCalibrateDuration int    `json:"waitToCalibrateDuration"`
}
