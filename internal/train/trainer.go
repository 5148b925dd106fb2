package train

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/andresilva/loadcast/internal/dataset"
	"github.com/andresilva/loadcast/internal/loss"
	"github.com/andresilva/loadcast/internal/model"
)

// EpochMAE records the validation error measured after one epoch.
type EpochMAE struct {
	Epoch int
	MAE   float64
}

// Evaluation accumulates validation state across batches: total
// absolute error, total element count and the last-step prediction of
// every validation sample, in order. MAE is computed once at the end
// from the accumulated sums, so unequal batch sizes carry their true
// weight.
type Evaluation struct {
	SumAbsError   float64
	Count         int
	LastStepPreds []float64
}

// MAE returns the mean absolute error over everything accumulated so
// far. An empty evaluation reports NaN rather than a silent zero.
func (e *Evaluation) MAE() float64 {
	if e.Count == 0 {
		return math.NaN()
	}
	return e.SumAbsError / float64(e.Count)
}

// Result is the outcome of a full training run.
type Result struct {
	// History holds one entry per evaluated epoch, in epoch order.
	History []EpochMAE
	// LastStepPreds are the final evaluation's one-step-ahead
	// predictions, aligned with the validation samples.
	LastStepPreds []float64
	// FinalTrainLoss is the mean batch loss of the last epoch.
	FinalTrainLoss float64
}

// Trainer drives the epoch loop for one model.
type Trainer struct {
	cfg   Config
	model *model.Model
	log   zerolog.Logger
}

// NewTrainer wires a model to a validated config.
func NewTrainer(cfg Config, m *model.Model, log zerolog.Logger) (*Trainer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Trainer{cfg: cfg, model: m, log: log}, nil
}

// Run trains for the configured number of epochs and evaluates every
// EvalPeriod epochs. Batches are consumed in the order given, every
// epoch.
func (t *Trainer) Run(trainBatches, valBatches [][]dataset.Sample) (*Result, error) {
	if len(trainBatches) == 0 {
		return nil, fmt.Errorf("train: no training batches")
	}

	res := &Result{}
	for epoch := 0; epoch < t.cfg.Epochs; epoch++ {
		t.model.SetTraining(true)

		var epochLoss float64
		for _, batch := range trainBatches {
			xs, ys := batchInputs(batch)
			epochLoss += t.model.TrainBatch(xs, ys)
		}
		epochLoss /= float64(len(trainBatches))
		res.FinalTrainLoss = epochLoss

		if (epoch+1)%t.cfg.EvalPeriod != 0 {
			continue
		}

		eval := t.Evaluate(valBatches)
		mae := eval.MAE()
		res.History = append(res.History, EpochMAE{Epoch: epoch, MAE: mae})
		res.LastStepPreds = eval.LastStepPreds

		t.log.Info().
			Int("epoch", epoch).
			Float64("train_loss", epochLoss).
			Float64("val_mae", mae).
			Msg("evaluated")
	}
	return res, nil
}

// Evaluate folds the model over the validation batches, accumulating
// absolute error and element counts. The model is switched to
// evaluation mode for the duration and restored afterwards.
func (t *Trainer) Evaluate(valBatches [][]dataset.Sample) *Evaluation {
	prev := t.model.Training()
	t.model.SetTraining(false)
	defer t.model.SetTraining(prev)

	var metric loss.MAE
	eval := &Evaluation{}
	for _, batch := range valBatches {
		for _, s := range batch {
			pred := t.model.Predict(s.History)
			eval.SumAbsError += metric.Forward(pred, s.Target) * float64(len(pred))
			eval.Count += len(pred)
			eval.LastStepPreds = append(eval.LastStepPreds, pred[len(pred)-1])
		}
	}
	return eval
}

// batchInputs splits a batch of samples into parallel input and target
// slices for the model.
func batchInputs(batch []dataset.Sample) (xs, ys [][]float64) {
	xs = make([][]float64, len(batch))
	ys = make([][]float64, len(batch))
	for i, s := range batch {
		xs[i] = s.History
		ys[i] = s.Target
	}
	return xs, ys
}
