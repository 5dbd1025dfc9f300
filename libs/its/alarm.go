package its

// EmergencyType значение заголовка типа, которое означает тревожную кнопку
const EmergencyType = "EMR"

var statusAlarms = map[string]Alarm{
	"WD": AlarmSOS,
	"EA": AlarmSOS,
	"BL": AlarmLowBattery,
	"HB": AlarmBraking,
	"HA": AlarmAcceleration,
	"RT": AlarmCornering,
	"OS": AlarmOverspeed,
	"TA": AlarmTampering,
}

// DecodeAlarm возвращает тревогу по двухбуквенному коду статуса.
// Для неизвестного кода возвращается AlarmNone.
func DecodeAlarm(status string) Alarm {
	return statusAlarms[status]
}
