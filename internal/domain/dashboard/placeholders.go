package dashboard

// Appointment is a booking shown on the patient dashboard.
type Appointment struct {
	ID            int    `json:"id"`
	Medico        string `json:"medico"`
	Especialidade string `json:"especialidade"`
	Data          string `json:"data"`
	Horario       string `json:"horario"`
	Endereco      string `json:"endereco,omitempty"`
	Status        string `json:"status"`
}

// AgendaItem is a slot of the doctor's day.
type AgendaItem struct {
	ID       int    `json:"id"`
	Paciente string `json:"paciente"`
	Horario  string `json:"horario"`
	Tipo     string `json:"tipo"`
	Status   string `json:"status"`
}

// Stat is one of the doctor's summary cards.
type Stat struct {
	Titulo string `json:"titulo"`
	Valor  string `json:"valor"`
}

// PatientPanel is the patient-only part of the dashboard.
type PatientPanel struct {
	Proximas  []Appointment `json:"consultasProximas"`
	Historico []Appointment `json:"historico"`
}

// DoctorPanel is the doctor-only part of the dashboard.
type DoctorPanel struct {
	AgendaHoje   []AgendaItem `json:"agendaHoje"`
	Estatisticas []Stat       `json:"estatisticas"`
}

// There is no booking engine yet; both panels are fixed sample data.
func patientPanel() *PatientPanel {
	return &PatientPanel{
		Proximas: []Appointment{
			{ID: 1, Medico: "Dra. Ana Silva", Especialidade: "Cardiologia", Data: "2025-06-10", Horario: "14:00",
				Endereco: "Rua das Flores, 123 - São Paulo, SP", Status: "confirmada"},
			{ID: 2, Medico: "Dr. Carlos Santos", Especialidade: "Dermatologia", Data: "2025-06-15", Horario: "09:30",
				Endereco: "Av. Paulista, 456 - São Paulo, SP", Status: "pendente"},
		},
		Historico: []Appointment{
			{ID: 1, Medico: "Dr. João Oliveira", Especialidade: "Clínico Geral", Data: "2025-05-20", Horario: "10:00", Status: "realizada"},
			{ID: 2, Medico: "Dra. Maria Costa", Especialidade: "Ginecologia", Data: "2025-05-15", Horario: "15:30", Status: "realizada"},
		},
	}
}

func doctorPanel() *DoctorPanel {
	return &DoctorPanel{
		AgendaHoje: []AgendaItem{
			{ID: 1, Paciente: "João Silva", Horario: "09:00", Tipo: "Consulta", Status: "confirmada"},
			{ID: 2, Paciente: "Maria Santos", Horario: "10:30", Tipo: "Retorno", Status: "confirmada"},
			{ID: 3, Paciente: "Carlos Oliveira", Horario: "14:00", Tipo: "Primeira consulta", Status: "pendente"},
			{ID: 4, Paciente: "Ana Costa", Horario: "15:30", Tipo: "Consulta", Status: "confirmada"},
		},
		Estatisticas: []Stat{
			{Titulo: "Consultas Hoje", Valor: "8"},
			{Titulo: "Pacientes Este Mês", Valor: "156"},
			{Titulo: "Taxa de Ocupação", Valor: "85%"},
			{Titulo: "Avaliação Média", Valor: "4.9"},
		},
	}
}
