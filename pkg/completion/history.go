package completion

const (
	// historyLimit é o tamanho máximo do histórico enviado ao serviço de geração
	historyLimit = 20

	// recentTail é quantas entradas mais recentes são mantidas além do preâmbulo
	recentTail = historyLimit - 1
)

// ShapeHistory limita o histórico ao preâmbulo de sistema mais as entradas
// mais recentes. A primeira entrada (preâmbulo) é sempre preservada como
// primeira, independente do corte.
func ShapeHistory(history []Message) []Message {
	if len(history) <= historyLimit {
		return history
	}

	shaped := make([]Message, 0, historyLimit)
	shaped = append(shaped, history[0])
	shaped = append(shaped, history[len(history)-recentTail:]...)
	return shaped
}
