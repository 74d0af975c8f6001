package solver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/quizchain/solver-service/internal/fetch"
	"github.com/quizchain/solver-service/internal/llm"
	"github.com/quizchain/solver-service/internal/models"
	"github.com/quizchain/solver-service/internal/utils"
)

// answers longer than this get cut when the payload limit trips
const truncatedAnswerLen = 1000

// Options are the per-chain budgets, fixed at driver construction.
type Options struct {
	MaxAttempts      int
	TotalWorkTimeout time.Duration
	MaxPayloadBytes  int
}

// ChainResult is the final state of a chain run.
type ChainResult struct {
	Results      []models.AttemptOutcome
	AttemptsUsed int
	CorrectCount int
	Status       models.SessionStatus
	Elapsed      time.Duration
}

// AttemptObserver is notified after every completed cycle, successful or not.
// qc is nil when the page fetch itself failed.
type AttemptObserver func(sequence int, qc *models.QuizContext, outcome models.AttemptOutcome)

// Driver runs the fetch -> extract -> classify -> answer -> submit loop for
// one chain. A driver owns its random source and is used by a single
// goroutine; sessions never share one.
type Driver struct {
	renderer fetch.Renderer
	client   *fetch.Client
	strategy AnswerStrategy
	fallback llm.Asker
	pacer    *Pacer
	logger   utils.Logger
	opts     Options
}

func NewDriver(
	renderer fetch.Renderer,
	client *fetch.Client,
	strategy AnswerStrategy,
	fallback llm.Asker,
	pacer *Pacer,
	logger utils.Logger,
	opts Options,
) *Driver {
	return &Driver{
		renderer: renderer,
		client:   client,
		strategy: strategy,
		fallback: fallback,
		pacer:    pacer,
		logger:   logger,
		opts:     opts,
	}
}

// RunChain follows a quiz chain from startURL until the grader stops handing
// out URLs, an error occurs, the attempt budget is used up or the time budget
// is exhausted. The email/secret pair is captured here and reused unmodified
// for every submission in the chain.
func (d *Driver) RunChain(ctx context.Context, email, secret, startURL string, observer AttemptObserver) *ChainResult {
	start := time.Now()
	res := &ChainResult{Status: models.SessionCompleted}
	currentURL := startURL

	d.logger.Info("Starting quiz chain",
		"url", startURL,
		"email", email,
		"strategy", d.strategy.Name(),
		"max_attempts", d.opts.MaxAttempts)

	for currentURL != "" && res.AttemptsUsed < d.opts.MaxAttempts {
		if time.Since(start) > d.opts.TotalWorkTimeout {
			d.logger.Warn("Total work timeout reached, stopping chain",
				"timeout", d.opts.TotalWorkTimeout.String(),
				"attempts_used", res.AttemptsUsed)
			res.Status = models.SessionTimedOut
			break
		}

		res.AttemptsUsed++
		seq := res.AttemptsUsed
		d.logger.Info("Solving quiz page", "sequence", seq, "url", currentURL)

		d.pacer.Pause(2.0, 5.0)

		qc, grader, err := d.RunOnce(ctx, email, secret, currentURL)
		if err != nil {
			d.logger.LogError(err, "Quiz attempt failed", "sequence", seq, "url", currentURL)
			outcome := models.AttemptOutcome{URL: currentURL, Error: err.Error()}
			if qc != nil {
				outcome.Answer = qc.Answer
			}
			res.Results = append(res.Results, outcome)
			if observer != nil {
				observer(seq, qc, outcome)
			}
			res.Status = models.SessionFailed
			break
		}

		outcome := models.AttemptOutcome{URL: currentURL, Answer: qc.Answer, Response: grader}
		res.Results = append(res.Results, outcome)
		if observer != nil {
			observer(seq, qc, outcome)
		}

		if grader.Correct {
			res.CorrectCount++
		}

		if grader.Correct && grader.URL != "" {
			d.logger.Info("Moving to next URL", "url", grader.URL)
			currentURL = grader.URL
			if grader.Delay > 0 {
				d.pacer.PauseFixed(grader.Delay, 0.5, 2.0)
			}
			continue
		}

		if !grader.Correct {
			d.logger.Warn("Incorrect answer", "reason", grader.Reason, "url", currentURL)
		}
		d.logger.Info("Quiz chain completed", "correct", res.CorrectCount, "attempts", res.AttemptsUsed)
		break
	}

	res.Elapsed = time.Since(start)
	d.logger.Info("Chain finished",
		"status", string(res.Status),
		"correct", res.CorrectCount,
		"attempts", res.AttemptsUsed,
		"elapsed", res.Elapsed.String())
	return res
}

// RunOnce executes a single fetch/extract/classify/answer/submit cycle. The
// synchronous endpoint calls this directly; RunChain calls it per iteration.
func (d *Driver) RunOnce(ctx context.Context, email, secret, url string) (*models.QuizContext, *models.GraderResponse, error) {
	page, err := d.renderer.Render(ctx, url)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch failed: %w", err)
	}

	qc := d.Analyze(url, page)
	d.logger.Debug("Page analyzed",
		"url", url,
		"task_type", string(qc.TaskType),
		"secret_found", qc.SecretOK,
		"submit_url", qc.SubmitURL)

	answer, err := d.generateAnswer(ctx, qc)
	if err != nil {
		return qc, nil, fmt.Errorf("answer generation failed: %w", err)
	}
	qc.Answer = answer
	d.logger.Info("Generated answer", "answer", answer, "submit_url", qc.SubmitURL)

	payload, err := d.buildPayload(email, secret, qc)
	if err != nil {
		return qc, nil, err
	}

	d.pacer.Pause(1.0, 2.0)

	var grader models.GraderResponse
	if err := d.client.PostJSON(ctx, qc.SubmitURL, payload, &grader); err != nil {
		return qc, nil, fmt.Errorf("submission failed: %w", err)
	}
	d.logger.Info("Grader response",
		"correct", grader.Correct,
		"next_url", grader.URL,
		"reason", grader.Reason)

	return qc, &grader, nil
}

// Analyze runs the pure extraction and classification stages over a page.
func (d *Driver) Analyze(url string, page *models.PageContent) *models.QuizContext {
	instructions := DecodeInstructions(page.HTML)
	secret, ok := ExtractSecret(page.HTML)

	return &models.QuizContext{
		CurrentURL: url,
		Page:       page,
		Secret:     secret,
		SecretOK:   ok,
		TaskType:   Classify(instructions, url),
		Question:   QuestionSnippet(instructions),
		SubmitURL:  ExtractSubmitURL(page.HTML, instructions, page.Hrefs, url),
		DataURLs:   FindDataURLs(page.HTML),
	}
}

// generateAnswer consults the LLM fallback for tasks the built-in heuristics
// understand least, then falls through to the configured strategy. A missing
// or failing fallback is never an error.
func (d *Driver) generateAnswer(ctx context.Context, qc *models.QuizContext) (any, error) {
	if d.fallback != nil && (qc.TaskType == models.TaskGeneral || qc.TaskType == models.TaskAPICall) {
		res, err := d.fallback.Ask(ctx, qc.Question)
		switch {
		case err != nil:
			d.logger.Warn("LLM fallback failed, using built-in strategy", "error", err)
		case res != nil:
			d.logger.Info("Using LLM answer", "type", res.Type)
			return res.Answer, nil
		}
	}

	return d.strategy.Answer(ctx, qc)
}

// buildPayload serializes the submission and applies the size guard: an
// oversized payload has its answer truncated to its first 1000 characters,
// once, with no re-measurement afterwards.
func (d *Driver) buildPayload(email, secret string, qc *models.QuizContext) ([]byte, error) {
	sub := models.Submission{
		Email:  email,
		Secret: secret,
		URL:    qc.CurrentURL,
		Answer: qc.Answer,
	}

	payload, err := json.Marshal(sub)
	if err != nil {
		return nil, fmt.Errorf("marshal submission: %w", err)
	}

	if len(payload) > d.opts.MaxPayloadBytes {
		d.logger.Warn("Payload size exceeds limit, truncating answer",
			"size", len(payload), "limit", d.opts.MaxPayloadBytes)
		truncated := fmt.Sprintf("%v", qc.Answer)
		if len(truncated) > truncatedAnswerLen {
			truncated = truncated[:truncatedAnswerLen]
		}
		sub.Answer = truncated
		qc.Answer = truncated
		payload, err = json.Marshal(sub)
		if err != nil {
			return nil, fmt.Errorf("marshal truncated submission: %w", err)
		}
	}

	return payload, nil
}
