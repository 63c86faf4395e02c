package pages

// Link is a navigation target.
type Link struct {
	Label string `json:"label"`
	Href  string `json:"href"`
}

// Item is a titled card.
type Item struct {
	Titulo    string `json:"titulo"`
	Descricao string `json:"descricao"`
}

// Doctor is a featured doctor card on the home page.
type Doctor struct {
	Nome            string  `json:"nome"`
	Especialidade   string  `json:"especialidade"`
	CRM             string  `json:"crm"`
	Rating          float64 `json:"rating"`
	Avaliacoes      int     `json:"avaliacoes"`
	ProximaConsulta string  `json:"proximaConsulta"`
	Valor           string  `json:"valor"`
	Endereco        string  `json:"endereco"`
}

// Section is one block of a page.
type Section struct {
	Titulo    string   `json:"titulo"`
	Subtitulo string   `json:"subtitulo,omitempty"`
	Items     []Item   `json:"items,omitempty"`
	Medicos   []Doctor `json:"medicos,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

// Page is the descriptor a client renders for a public route.
type Page struct {
	Path      string    `json:"path"`
	Titulo    string    `json:"titulo"`
	Subtitulo string    `json:"subtitulo"`
	Nav       []Link    `json:"nav"`
	Sections  []Section `json:"sections"`
	Actions   []Link    `json:"actions,omitempty"`
}

var nav = []Link{
	{Label: "Para Pacientes", Href: "/para-pacientes"},
	{Label: "Para Médicos", Href: "/para-medicos"},
	{Label: "Como Funciona", Href: "/como-funciona"},
	{Label: "Entrar", Href: "/login"},
	{Label: "Cadastrar", Href: "/cadastro"},
}

var startActions = []Link{
	{Label: "Cadastre-se Grátis", Href: "/cadastro"},
	{Label: "Saiba Mais", Href: "/para-pacientes"},
}

var home = Page{
	Path:      "/",
	Titulo:    "Sua saúde em primeiro lugar",
	Subtitulo: "Encontre e agende consultas com os melhores médicos do Brasil.",
	Nav:       nav,
	Sections: []Section{
		{
			Titulo: "Especialidades",
			Tags:   []string{"Cardiologia", "Dermatologia", "Psiquiatria", "Pediatria", "Ginecologia", "Ortopedia", "Neurologia", "Oftalmologia"},
		},
		{
			Titulo: "Médicos em Destaque",
			Medicos: []Doctor{
				{Nome: "Dra. Ana Silva", Especialidade: "Cardiologia", CRM: "CRM/SP 123456", Rating: 4.9, Avaliacoes: 150,
					ProximaConsulta: "Hoje às 14:00", Valor: "R$ 200", Endereco: "São Paulo, SP"},
				{Nome: "Dr. Carlos Santos", Especialidade: "Psiquiatria", CRM: "CRM/RJ 789012", Rating: 4.8, Avaliacoes: 98,
					ProximaConsulta: "Amanhã às 09:30", Valor: "R$ 250", Endereco: "Rio de Janeiro, RJ"},
				{Nome: "Dra. Maria Oliveira", Especialidade: "Dermatologia", CRM: "CRM/MG 345678", Rating: 4.9, Avaliacoes: 203,
					ProximaConsulta: "Hoje às 16:30", Valor: "R$ 180", Endereco: "Belo Horizonte, MG"},
			},
		},
		{
			Titulo: "Por que escolher o AgendarBrasil?",
			Items: []Item{
				{"Busca Inteligente", "Encontre médicos por especialidade, localização e disponibilidade em tempo real."},
				{"Agendamento Fácil", "Agende consultas em poucos cliques, com confirmação automática."},
				{"Suporte 24/7", "Nossa equipe está sempre disponível para ajudar pacientes e médicos."},
			},
		},
		{
			Titulo:    "Pronto para começar?",
			Subtitulo: "Junte-se a milhares de pacientes que já encontraram seus médicos ideais.",
		},
	},
	Actions: startActions,
}

var comoFunciona = Page{
	Path:      "/como-funciona",
	Titulo:    "Como o AgendarBrasil funciona?",
	Subtitulo: "Conectamos pacientes e médicos de forma simples, rápida e segura.",
	Nav:       nav,
	Sections: []Section{
		{
			Titulo:    "Para Pacientes",
			Subtitulo: "Agende sua consulta em 3 passos simples",
			Items: []Item{
				{"Busque seu médico", "Use nossa busca inteligente para encontrar médicos por especialidade, localização e disponibilidade."},
				{"Escolha o horário", "Veja os horários disponíveis em tempo real e escolha o que melhor se adapta à sua agenda."},
				{"Confirme sua consulta", "Receba confirmação instantânea e lembretes automáticos da sua consulta."},
			},
		},
		{
			Titulo:    "Para Médicos",
			Subtitulo: "Gerencie sua agenda de forma profissional",
			Items: []Item{
				{"Cadastre-se gratuitamente", "Crie seu perfil profissional com suas especialidades, horários e localização."},
				{"Gerencie sua agenda", "Configure seus horários disponíveis e deixe o sistema gerenciar automaticamente."},
				{"Receba pacientes", "Atenda mais pacientes com uma agenda organizada e confirmações automáticas."},
			},
		},
		{
			Titulo:    "Vantagens do AgendarBrasil",
			Subtitulo: "Por que escolher nossa plataforma",
			Items: []Item{
				{"Gratuito para Pacientes", "Busque e agende consultas sem nenhum custo adicional."},
				{"Confirmação Instantânea", "Receba confirmação imediata do seu agendamento."},
				{"Segurança de Dados", "Seus dados estão protegidos com criptografia de ponta."},
				{"Lembretes Automáticos", "Nunca mais esqueça uma consulta com nossos lembretes."},
			},
		},
		{
			Titulo: "Perguntas Frequentes",
			Items: []Item{
				{"O AgendarBrasil é gratuito?", "Sim! Para pacientes, o uso é 100% gratuito. Para médicos, oferecemos um plano gratuito com funcionalidades básicas e planos premium com recursos avançados."},
				{"Como posso cancelar uma consulta?", "Você pode cancelar uma consulta diretamente pelo seu perfil na plataforma ou pelos links nos e-mails de confirmação, respeitando as políticas de cancelamento."},
				{"Meus dados estão seguros?", "Absolutamente! Utilizamos criptografia de ponta e seguimos todas as normas da LGPD para garantir a segurança e privacidade dos seus dados."},
			},
		},
	},
	Actions: startActions,
}

var paraPacientes = Page{
	Path:      "/para-pacientes",
	Titulo:    "Para Pacientes",
	Subtitulo: "Encontre os melhores médicos do Brasil, agende consultas facilmente e tenha acesso a cuidados de saúde de qualidade.",
	Nav:       nav,
	Sections: []Section{
		{
			Titulo: "Por que escolher o AgendarBrasil?",
			Items: []Item{
				{"Busca Inteligente", "Encontre médicos por especialidade, localização, horário disponível e avaliações de outros pacientes."},
				{"Agendamento Rápido", "Agende consultas em poucos cliques, 24h por dia, com confirmação automática em tempo real."},
				{"100% Gratuito", "Use todos os recursos da plataforma sem pagar nada. Sem taxas ocultas ou mensalidades."},
				{"Avaliações Reais", "Leia avaliações de outros pacientes e escolha os melhores profissionais para seu cuidado."},
				{"Horários Flexíveis", "Encontre horários que se encaixem na sua agenda, incluindo fins de semana e feriados."},
				{"Suporte Completo", "Nossa equipe está sempre disponível para ajudar com dúvidas ou problemas técnicos."},
			},
		},
		{
			Titulo: "Como funciona",
			Items: []Item{
				{"Cadastre-se", "Crie sua conta gratuita em menos de 2 minutos com suas informações básicas."},
				{"Busque Médicos", "Use nossa busca inteligente para encontrar o profissional ideal por especialidade ou localização."},
				{"Agende a Consulta", "Escolha o horário que funciona para você e confirme o agendamento instantaneamente."},
				{"Compareça à Consulta", "Receba lembretes e compareça no horário marcado. Depois, avalie o atendimento."},
			},
		},
	},
	Actions: []Link{{Label: "Cadastre-se como Paciente", Href: "/cadastro?tipo=paciente"}},
}

var paraMedicos = Page{
	Path:      "/para-medicos",
	Titulo:    "Para Médicos",
	Subtitulo: "Transforme sua prática médica com nossa plataforma. Mais pacientes, agenda organizada e gestão simplificada.",
	Nav:       nav,
	Sections: []Section{
		{
			Titulo: "Benefícios",
			Items: []Item{
				{"Mais Pacientes", "Alcance milhares de pacientes que procuram por sua especialidade em toda sua região."},
				{"Gestão de Agenda", "Controle total da sua agenda com sistema inteligente de agendamentos e lembretes automáticos."},
				{"Aumente sua Receita", "Maximize seus horários disponíveis e reduza faltas com confirmações automáticas."},
				{"Economize Tempo", "Reduza ligações e administração manual. Foque no que importa: cuidar dos pacientes."},
				{"Segurança Total", "Plataforma em conformidade com LGPD e normas do CFM para proteção de dados médicos."},
				{"Relatórios Detalhados", "Acompanhe métricas importantes: pacientes atendidos, receita, horários de maior demanda."},
			},
		},
		{
			Titulo: "Como funciona",
			Items: []Item{
				{"Cadastre-se", "Complete seu perfil médico com CRM, especialidades e informações profissionais."},
				{"Configure sua Agenda", "Defina seus horários disponíveis, duração das consultas e locais de atendimento."},
				{"Receba Agendamentos", "Pacientes encontram você e agendam consultas automaticamente nos seus horários livres."},
				{"Atenda e Fature", "Receba lembretes, atenda seus pacientes e acompanhe sua receita em tempo real."},
			},
		},
		{
			Titulo: "Recursos",
			Items: []Item{
				{"App Mobile", "Gerencie sua agenda pelo celular, receba notificações e confirme consultas."},
				{"Comunicação", "Chat integrado com pacientes para esclarecimentos e orientações pré-consulta."},
				{"Pagamentos", "Receba pagamentos online com segurança e acompanhe sua receita mensal."},
			},
		},
	},
	Actions: []Link{{Label: "Cadastre-se como Médico", Href: "/cadastro?tipo=medico"}},
}

var notFound = Page{
	Titulo:    "404",
	Subtitulo: "Oops! Página não encontrada",
	Nav:       nav,
	Actions:   []Link{{Label: "Voltar ao início", Href: "/"}},
}

// All returns the public pages in navigation order.
func All() []Page {
	return []Page{home, comoFunciona, paraPacientes, paraMedicos}
}
